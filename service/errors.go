package service

import "errors"

var (
	// ErrServiceUnavailable signals that the generation API could not be
	// used: quota exhausted, transport failure or a malformed response.
	ErrServiceUnavailable = errors.New("generation service unavailable")

	// ErrUnsupportedFileType signals a MIME type outside the supported set.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrTextExtractionFailed signals that neither the native reader nor
	// OCR produced usable text.
	ErrTextExtractionFailed = errors.New("text extraction failed")

	// ErrAnalysisNotFound signals a retry against an unknown or expired
	// analysis id.
	ErrAnalysisNotFound = errors.New("analysis not found")
)
