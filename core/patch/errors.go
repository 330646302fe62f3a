package patch

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound means a resource named by the patch does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrSectionNotFound means the patch edits a section the target does not have.
	ErrSectionNotFound = errors.New("section not found")
	// ErrSerialization means a resource could not be parsed or re-encoded.
	ErrSerialization = errors.New("serialization failure")
	// ErrConditionEvaluation means a condition could not be evaluated.
	ErrConditionEvaluation = errors.New("condition evaluation failure")
	// ErrInvalidPatch means the patch definition is incomplete or unknown.
	ErrInvalidPatch = errors.New("invalid patch")
)

// Error is the failure of one named patch.
type Error struct {
	Patch  string    `json:"patch"`
	Op     Operation `json:"op"`
	Target string    `json:"target"`
	Err    error     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch %q (%s %s): %v", e.Patch, e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON includes the underlying error message.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(struct {
		*alias
		Message string `json:"error"`
	}{alias: (*alias)(e), Message: e.Err.Error()})
}
