package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrForbidden    = errors.New("resume access denied")
	ErrInvalidInput = errors.New("invalid input")
)
