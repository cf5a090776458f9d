package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural marks a document that is not a processable feature
	// collection at all.
	ErrStructural = errors.New("structural error")

	// ErrPipelineFailure marks an unexpected failure while optimizing,
	// validating, rendering or packaging an export. No artifact exists.
	ErrPipelineFailure = errors.New("export pipeline failure")

	// ErrInvalidFilter marks malformed export parameters rejected before
	// any place is loaded.
	ErrInvalidFilter = errors.New("invalid export filter")

	// ErrNotFound is returned by repositories for a missing record.
	ErrNotFound = errors.New("not found")
)

// StructuralError describes why a document could not be read as a
// feature collection.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s", e.Reason)
}

// Is lets errors.Is(err, ErrStructural) match any StructuralError.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}
