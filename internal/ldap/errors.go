package ldap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fgardt/lldap/internal/domain"
)

var (
	ErrInvalidDN        = errors.New("invalid DN")
	ErrWrongBranch      = errors.New("entry outside the expected branch")
	ErrMissingAttribute = errors.New("required attribute missing")
	ErrUnexpectedRDN    = errors.New("unexpected RDN attribute")
	ErrInvalidAttribute = errors.New("invalid attribute value")
)

// ErrorCategory represents different categories of entry conversion errors.
type ErrorCategory string

const (
	ErrorCategoryNaming     ErrorCategory = "naming"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// EntryError reports a failed conversion between an entity and an LDAP entry.
type EntryError struct {
	Operation string        // The conversion that failed
	Category  ErrorCategory // Error category
	DN        string        // DN of the entry (if known)
	Attribute string        // Attribute involved (if applicable)
	Cause     error         // Underlying error
}

func (e *EntryError) Error() string {
	parts := []string{fmt.Sprintf("LDAP %s failed", e.Operation)}

	if e.Attribute != "" {
		parts = append(parts, fmt.Sprintf("attribute: %s", e.Attribute))
	}

	if e.DN != "" {
		parts = append(parts, fmt.Sprintf("DN: %s", e.DN))
	}

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *EntryError) Unwrap() error {
	return e.Cause
}

// NewEntryError creates an entry error, categorized by its cause.
func NewEntryError(operation, dn, attribute string, err error) *EntryError {
	if err == nil {
		return nil
	}

	return &EntryError{
		Operation: operation,
		Category:  categorizeError(err),
		DN:        dn,
		Attribute: attribute,
		Cause:     err,
	}
}

func categorizeError(err error) ErrorCategory {
	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, ErrInvalidDN), errors.Is(err, ErrWrongBranch), errors.Is(err, ErrUnexpectedRDN):
		return ErrorCategoryNaming
	case errors.Is(err, ErrMissingAttribute):
		return ErrorCategoryNotFound
	case errors.As(err, &validationErr), errors.Is(err, ErrInvalidAttribute):
		return ErrorCategoryValidation
	default:
		return ErrorCategoryUnknown
	}
}

// GetCategory returns the category of err if it is an *EntryError.
func GetCategory(err error) ErrorCategory {
	var entryErr *EntryError
	if errors.As(err, &entryErr) {
		return entryErr.Category
	}
	return ErrorCategoryUnknown
}
