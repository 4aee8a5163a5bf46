package engine

import (
	"testing"
)

func TestParseLevel_Example(t *testing.T) {
	level := ExampleLevel()

	if level.Width() != 7 || level.Height() != 7 {
		t.Fatalf("Expected 7x7 level, got %dx%d", level.Width(), level.Height())
	}
	if level.At(2, 1) != Player {
		t.Errorf("Expected player at (2,1), got %q", level.At(2, 1))
	}
	if level.At(2, 2) != BoxOnSpot {
		t.Errorf("Expected box on spot at (2,2), got %q", level.At(2, 2))
	}
	if level.At(1, 1) != Spot {
		t.Errorf("Expected spot at (1,1), got %q", level.At(1, 1))
	}
}

func TestParseLevel_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		height   int
		expected string
	}{
		{"empty input", "", 0, 0, ""},
		{"single row without newline", "#@#", 3, 1, "#@#\n"},
		{"trailing newline dropped", "#@#\n", 3, 1, "#@#\n"},
		{"carriage returns ignored", "#@#\r\n#.#\r\n", 3, 2, "#@#\n#.#\n"},
		{"unknown bytes become floor", "#x@\n", 3, 1, "# @\n"},
		{"short rows padded with floor", "#####\n#@\n#", 5, 3, "#####\n#@   \n#    \n"},
		{"blank rows kept", "#\n\n#", 1, 3, "#\n \n#\n"},
		{"only newlines", "\n\n", 0, 2, "\n\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			level := ParseLevelString(test.input)
			if level.Width() != test.width || level.Height() != test.height {
				t.Fatalf("Expected %dx%d, got %dx%d", test.width, test.height, level.Width(), level.Height())
			}
			if got := level.String(); got != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestLevelSerialize_ReparsesToSameLevel(t *testing.T) {
	level := ExampleLevel()
	reparsed := ParseLevel(level.Bytes())

	if !level.Equal(reparsed) {
		t.Errorf("Expected reparsed level to equal original:\n%s\nvs\n%s", level, reparsed)
	}
}

func TestNewLevel_FloorFilled(t *testing.T) {
	level := NewLevel(3, 2)

	if level.Count(Floor) != 6 {
		t.Errorf("Expected 6 floor cells, got %d", level.Count(Floor))
	}
	if level.String() != "   \n   \n" {
		t.Errorf("Unexpected serialization %q", level.String())
	}
}

func TestLevelAt_OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected At to panic for out of range coordinates")
		}
	}()
	NewLevel(2, 2).At(2, 0)
}

func TestLevelRows(t *testing.T) {
	rows := ParseLevelString("#@\n.$\n").Rows()
	if len(rows) != 2 || rows[0] != "#@" || rows[1] != ".$" {
		t.Errorf("Unexpected rows %q", rows)
	}
}
