package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxMoveBudget caps the move budget accepted from untrusted input. Search
// cost grows combinatorially with the budget; a KAMI 2 board never needs
// more than a couple dozen moves.
const MaxMoveBudget = 64

// imageExtensions are the screenshot formats extraction can decode.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidateMaxMoves validates a move budget coming from a flag or API
// request. It rejects negative budgets and budgets beyond [MaxMoveBudget].
func ValidateMaxMoves(maxMoves int) error {
	if maxMoves < 0 {
		return New(ErrCodeInvalidBudget, "max moves cannot be negative")
	}
	if maxMoves > MaxMoveBudget {
		return New(ErrCodeInvalidBudget, "max moves too large (max %d)", MaxMoveBudget)
	}
	return nil
}

// ValidateImagePath validates a screenshot path for safety and decodability.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - Extension must be a decodable image format (.png, .jpg, .jpeg)
//
// Whether the file exists and actually decodes is checked by the extractor.
func ValidateImagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidImage, "image path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidImage, "image path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !imageExtensions[ext] {
		return New(ErrCodeInvalidImage, "unsupported image format %q (want .png, .jpg or .jpeg)", ext)
	}

	return nil
}

// ValidateGridSize validates triangle grid dimensions for extraction.
// Dimensions must be positive and small enough that the grid stays a
// plausible phone-screen board.
func ValidateGridSize(columns, rows int) error {
	const maxDimension = 128

	if columns < 1 || rows < 1 {
		return New(ErrCodeInvalidInput, "grid dimensions must be positive, got %dx%d", columns, rows)
	}
	if columns > maxDimension || rows > maxDimension {
		return New(ErrCodeInvalidInput, "grid dimensions too large (max %d), got %dx%d", maxDimension, columns, rows)
	}
	return nil
}

// ValidateFormat validates an output format name against the set of
// supported formats. The valid set is supplied by the caller so CLI and
// API surfaces can support different subsets.
func ValidateFormat(format string, valid map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !valid[format] {
		return New(ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return nil
}
