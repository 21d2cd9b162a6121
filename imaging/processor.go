// Package imaging defines the image-processing collaborator used by the
// picture orchestrator and ships a local implementation built on gift.
package imaging

import (
	"context"
	"image/color"
	"time"
)

// ColorPair holds the two endpoints of a background fill.
type ColorPair [2]color.Color

// Processor finds subjects in an image file.
type Processor interface {
	// DetectFaces returns one Face per face found at path; an empty slice
	// means none were found.
	DetectFaces(ctx context.Context, path string) ([]Face, error)
	// Open treats the whole image at path as a single subject.
	Open(ctx context.Context, path string) (Face, error)
}

// Face is a subject being turned into a profile picture. Operations are
// applied in call order; nothing touches the disk until Save.
type Face interface {
	Resize(size int) error
	RemoveBackground() error
	SetBackground(colors ColorPair) error
	ApplyContour() error
	SetBorder(c color.Color) error
	SetBlur(strength int) error
	// Save writes the result. A positive retention makes the file short-lived.
	Save(retention time.Duration) error
	Path() string
}
