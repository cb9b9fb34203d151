package catalog

import (
	"fmt"
	"strings"
)

// LoadError reports a failed catalog fetch.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load items: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DetailError reports a failed detail fetch for one item.
type DetailError struct {
	ItemID string
	Err    error
}

func (e *DetailError) Error() string {
	return fmt.Sprintf("failed to load details for %s: %v", e.ItemID, e.Err)
}

func (e *DetailError) Unwrap() error { return e.Err }

// ValidationError lists every selected item that breaks the identifier length
// limit. Names are in catalog order.
type ValidationError struct {
	Names     []string
	MaxLength int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("identifier longer than %d characters: %s", e.MaxLength, strings.Join(e.Names, ", "))
}

// genericImportFailure is shown when the backend gives no usable message.
const genericImportFailure = "import failed, please try again"

// ImportError reports a failed import call. The message is the backend's own
// when it provides one.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return genericImportFailure
	}
	msg := strings.TrimSpace(e.Err.Error())
	if msg == "" {
		return genericImportFailure
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }
