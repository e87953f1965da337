package semantic

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrColumnNotFound is matched by errors.Is for every *LookupError.
var ErrColumnNotFound = eris.New("column not found in table")

// LookupError reports a column named in the annotation text that the
// tabular data does not contain.
type LookupError struct {
	Column string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("semantic: column %q not found in table", e.Column)
}

func (e *LookupError) Unwrap() error {
	return ErrColumnNotFound
}
