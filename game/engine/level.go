package engine

import (
	"bytes"
	"strings"
)

// Level is an immutable width x height grid of tile symbols
type Level struct {
	width  int
	height int
	cells  []Symbol
}

// NewLevel creates a floor-filled level with the given size
func NewLevel(width, height int) *Level {
	if width < 0 || height < 0 {
		panic("engine: negative level size")
	}
	cells := make([]Symbol, width*height)
	for i := range cells {
		cells[i] = Floor
	}
	return &Level{width: width, height: height, cells: cells}
}

// exampleLayout is served when no level has been loaded yet
const exampleLayout = "#######\n" +
	"#.@ # #\n" +
	"#$* $ #\n" +
	"#   $ #\n" +
	"# ..  #\n" +
	"#  *  #\n" +
	"#######"

// ExampleLevel returns the built-in 7x7 level
func ExampleLevel() *Level {
	return ParseLevelString(exampleLayout)
}

// ParseLevelString parses level text, see ParseLevel
func ParseLevelString(text string) *Level {
	return ParseLevel([]byte(text))
}

// ParseLevel builds a level from raw text. Rows are separated by '\n',
// '\r' is dropped, unknown bytes become floor and short rows are padded
// with floor up to the longest row. It never fails.
func ParseLevel(data []byte) *Level {
	var rows [][]Symbol
	current := []Symbol{}
	width := 0

	for _, b := range data {
		switch b {
		case '\n':
			rows = append(rows, current)
			if len(current) > width {
				width = len(current)
			}
			current = []Symbol{}
			continue
		case '\r':
			continue
		}
		if !IsKnown(b) {
			b = byte(Floor)
		}
		current = append(current, Symbol(b))
	}
	if len(current) > width {
		width = len(current)
	}
	// A trailing newline leaves an empty last row behind
	if len(current) > 0 {
		rows = append(rows, current)
	}

	level := NewLevel(width, len(rows))
	for y, row := range rows {
		copy(level.cells[y*width:], row)
	}
	return level
}

// Width returns the number of columns
func (l *Level) Width() int {
	return l.width
}

// Height returns the number of rows
func (l *Level) Height() int {
	return l.height
}

// At returns the symbol at (x, y). Out of range coordinates panic.
func (l *Level) At(x, y int) Symbol {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		panic("engine: level coordinate out of range")
	}
	return l.cells[y*l.width+x]
}

// Rows returns the level as one string per row, without newlines
func (l *Level) Rows() []string {
	rows := make([]string, l.height)
	for y := 0; y < l.height; y++ {
		var sb strings.Builder
		for x := 0; x < l.width; x++ {
			sb.WriteByte(byte(l.cells[y*l.width+x]))
		}
		rows[y] = sb.String()
	}
	return rows
}

// Bytes serializes the level. Every row, the last included, ends with '\n'.
func (l *Level) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(l.height * (l.width + 1))
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			buf.WriteByte(byte(l.cells[y*l.width+x]))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// String serializes the level, see Bytes
func (l *Level) String() string {
	return string(l.Bytes())
}

// Equal reports whether both levels have the same size and cells
func (l *Level) Equal(other *Level) bool {
	if other == nil || l.width != other.width || l.height != other.height {
		return false
	}
	for i := range l.cells {
		if l.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Count returns how many cells hold the given symbol
func (l *Level) Count(s Symbol) int {
	count := 0
	for _, c := range l.cells {
		if c == s {
			count++
		}
	}
	return count
}
