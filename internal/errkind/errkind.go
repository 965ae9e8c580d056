package errkind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks expected absence: no provider match, no catalog hit.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks I/O or network failures worth retrying on a later cycle.
	ErrTransient = errors.New("transient failure")
	// ErrValidation marks caller mistakes such as a rejected rename.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing credentials or files required at a boundary.
	ErrConfiguration = errors.New("configuration error")
	// ErrCorrupt marks data-invariant violations that require manual repair.
	ErrCorrupt = errors.New("corrupt data")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the surrounding load or fix-up
// operation instead of being skipped for the cycle.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
