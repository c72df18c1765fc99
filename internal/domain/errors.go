package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeFormat        = "FORMAT_ERROR"
	ErrCodeStore         = "STORE_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyServiceCode    = NewDomainError(ErrCodeValidation, "service code is empty")
	ErrEmptyDescription    = NewDomainError(ErrCodeValidation, "description is empty")
	ErrDescriptionTooShort = NewDomainError(ErrCodeValidation, "description is shorter than the minimum length")
	ErrPriceOutOfRange     = NewDomainError(ErrCodeValidation, "price is outside the accepted range")
	ErrInvalidCodePattern  = NewDomainError(ErrCodeValidation, "service code does not match the source's code pattern")
	ErrInvalidFileStatus   = NewDomainError(ErrCodeValidation, "invalid processed file status")
)

// Format errors
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeFormat, "unsupported file type")
	ErrFileTooLarge        = NewDomainError(ErrCodeFormat, "file exceeds the maximum allowed size")
	ErrEmptySheet          = NewDomainError(ErrCodeFormat, "sheet has no data rows")
	ErrCorruptWorkbook     = NewDomainError(ErrCodeFormat, "workbook cannot be parsed as tabular data")
)

// Not found errors
var (
	ErrFileRecordNotFound = NewDomainError(ErrCodeNotFound, "processed file record not found")
	ErrServiceNotFound    = NewDomainError(ErrCodeNotFound, "service not found")
)

// Store errors
var (
	ErrVectorStoreUnavailable = NewDomainError(ErrCodeStore, "vector store unreachable")
)
