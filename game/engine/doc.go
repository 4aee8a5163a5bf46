// Package engine provides the core rules of the Sokoban game.
//
// The engine package implements:
//   - The plain-text level format (ParseLevel, Level.Bytes)
//   - Entity layers with at most one player per layer
//   - Boards built from levels and converted back with ToLevel
//   - Player movement, box pushing and the win condition (PlayEngine)
//   - Cursor based level editing (EditEngine)
//
// Core Types:
//
// A Level is an immutable grid of tile symbols. A Board splits a level into
// an occupant layer (walls, the player, boxes) and a spot layer, so a box or
// the player can stand on a spot. PlayEngine and EditEngine each own a Board.
//
// Usage:
//
//	level := engine.ParseLevelString("#####\n#@$.#\n#####\n")
//
//	game, err := engine.NewPlayEngine(level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := game.Move(engine.Right)
//	fmt.Println(outcome, game.Won())
//
// Level Format:
//
//	#  wall          $  box
//	@  player        *  box on spot
//	+  player on spot
//	.  spot             (space) floor
//
// Rows are separated by '\n'. Unknown bytes are read as floor and short rows
// are padded with floor, so parsing never fails.
package engine
