package errors

import (
	"testing"
)

func TestValidateMaxMoves(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"small budget", 5, false},
		{"at cap", MaxMoveBudget, false},

		{"negative", -1, true},
		{"above cap", MaxMoveBudget + 1, true},
		{"absurd", 1 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxMoves(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaxMoves(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBudget) {
				t.Errorf("ValidateMaxMoves(%d) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateImagePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"png", "puzzle.png", false},
		{"jpg", "shots/level-12.jpg", false},
		{"jpeg", "board.jpeg", false},
		{"uppercase extension", "PUZZLE.PNG", false},
		{"absolute path", "/tmp/puzzle.png", false},

		{"empty", "", true},
		{"no extension", "puzzle", true},
		{"wrong extension", "puzzle.gif", true},
		{"document", "notes.txt", true},
		{"null byte", "puzzle\x00.png", true},
		{"control char", "puzzle\x01.png", true},
		{"newline", "puzzle\n.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImagePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImagePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidImage) {
				t.Errorf("ValidateImagePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateGridSize(t *testing.T) {
	tests := []struct {
		name    string
		columns int
		rows    int
		wantErr bool
	}{
		{"default board", 10, 28, false},
		{"single cell", 1, 1, false},
		{"at cap", 128, 128, false},

		{"zero columns", 0, 28, true},
		{"zero rows", 10, 0, true},
		{"negative columns", -1, 28, true},
		{"negative rows", 10, -5, true},
		{"columns above cap", 129, 28, true},
		{"rows above cap", 10, 129, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGridSize(tt.columns, tt.rows)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGridSize(%d, %d) error = %v, wantErr %v", tt.columns, tt.rows, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateGridSize(%d, %d) returned wrong error code: %v", tt.columns, tt.rows, err)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	valid := map[string]bool{"svg": true, "png": true, "dot": true}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"png", "png", false},
		{"dot", "dot", false},

		{"empty", "", true},
		{"unknown", "pdf", true},
		{"uppercase", "SVG", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.input, valid)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidGraph,
		ErrCodeInvalidMove,
		ErrCodeInvalidImage,
		ErrCodeInvalidFormat,
		ErrCodeInvalidBudget,
		ErrCodeInvalidWeights,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeJobNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
