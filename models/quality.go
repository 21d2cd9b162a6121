package models

import "fmt"

// Quality is the output size tier of a processed picture.
type Quality string

const (
	QualityThumbnail Quality = "thumbnail"
	QualityPreview   Quality = "preview"
	QualityMedium    Quality = "medium"
	QualityHigh      Quality = "high"
)

var qualityDimensions = map[Quality]int{
	QualityThumbnail: 150,
	QualityPreview:   300,
	QualityMedium:    600,
	QualityHigh:      1000,
}

// Dimension returns the long-edge size in pixels for q.
func (q Quality) Dimension() (int, error) {
	dim, ok := qualityDimensions[q]
	if !ok {
		return 0, fmt.Errorf("unknown quality %q", string(q))
	}
	return dim, nil
}

func (q Quality) Valid() bool {
	_, ok := qualityDimensions[q]
	return ok
}

// ParseQuality maps a request value to a Quality; empty means preview.
func ParseQuality(s string) (Quality, error) {
	if s == "" {
		return QualityPreview, nil
	}
	q := Quality(s)
	if !q.Valid() {
		return "", fmt.Errorf("quality must be one of thumbnail, preview, medium, high")
	}
	return q, nil
}
