package documents

import (
	"errors"
	"fmt"

	"github.com/ternarybob/legalaid/internal/models"
)

// OCRNotImplementedMessage is shown for image uploads
const OCRNotImplementedMessage = "Image OCR not yet implemented. Please upload PDF or DOCX files for now."

var (
	// ErrOCRNotImplemented is the cause of every successfully decoded image upload
	ErrOCRNotImplemented = errors.New("image OCR not implemented")
	// ErrUnsupportedType is the cause when no extraction path matches
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ExtractionError is a failed extraction. Error() is the user-facing message.
type ExtractionError struct {
	Format  models.DocumentFormat
	Message string
	Err     error
}

func (e *ExtractionError) Error() string { return e.Message }

func (e *ExtractionError) Unwrap() error { return e.Err }

func extractFailed(format models.DocumentFormat, err error) *ExtractionError {
	return &ExtractionError{
		Format:  format,
		Message: fmt.Sprintf("Error extracting %s: %v", format, err),
		Err:     err,
	}
}

func imageFailed(err error) *ExtractionError {
	return &ExtractionError{
		Format:  models.FormatImage,
		Message: fmt.Sprintf("Error processing image: %v", err),
		Err:     err,
	}
}

func ocrNotImplemented() *ExtractionError {
	return &ExtractionError{
		Format:  models.FormatImage,
		Message: OCRNotImplementedMessage,
		Err:     ErrOCRNotImplemented,
	}
}

func unsupported(mimeType string) *ExtractionError {
	return &ExtractionError{
		Format:  models.FormatUnknown,
		Message: fmt.Sprintf("Unsupported file type: %s", mimeType),
		Err:     ErrUnsupportedType,
	}
}
