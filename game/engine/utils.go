package engine

// CountKind counts the entities of a kind held by a layer
func CountKind(layer *Layer, kind Kind) int {
	count := 0
	for _, e := range layer.cells {
		if e != nil && e.Kind == kind {
			count++
		}
	}
	return count
}

// UnseatedSpots counts the spots still waiting for a box
func UnseatedSpots(b *Board) int {
	count := 0
	for _, s := range b.spots.cells {
		if s != nil && !s.Seated {
			count++
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two points
func ManhattanDistance(from, to Point) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NearestUnseatedSpot finds the closest spot without a box and its
// distance from the player
func NearestUnseatedSpot(b *Board) (Point, int, bool) {
	player, ok := b.occupants.Player()
	if !ok {
		return Point{}, 0, false
	}

	minDistance := -1
	var nearest Point
	for _, s := range b.spots.cells {
		if s == nil || s.Seated {
			continue
		}
		distance := ManhattanDistance(player.Pos, s.Pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = s.Pos
		}
	}
	return nearest, minDistance, minDistance != -1
}
