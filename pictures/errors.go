package pictures

import "errors"

var (
	// ErrInvalidRequest is wrapped by every request validation failure
	ErrInvalidRequest = errors.New("invalid picture request")

	// ErrUnsupportedFile indicates an upload whose extension is not an accepted image type
	ErrUnsupportedFile = errors.New("unsupported picture file type")

	// ErrFaceIndex indicates a face index outside the detected faces
	ErrFaceIndex = errors.New("face index out of range")

	// ErrPictureNotFound indicates that the caller owns no picture with that name
	ErrPictureNotFound = errors.New("picture not found")
)

const noFaceMessage = "No Faces detected in the picture"

// NoFaceError is returned when the processor finds no face in the upload.
type NoFaceError struct {
	Message string
}

func (e *NoFaceError) Error() string {
	return e.Message
}

func newNoFaceError() *NoFaceError {
	return &NoFaceError{Message: noFaceMessage}
}
