package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissing is reported for a blob that was never persisted.
	ErrMissing = errors.New("blob missing")

	// ErrMalformed is reported when bytes are not valid JSON.
	ErrMalformed = errors.New("malformed JSON")

	// ErrInvalid is reported when a value does not match its schema.
	ErrInvalid = errors.New("value does not match schema")
)

// Result is the outcome of checking one value against its schema.
// On success Value holds the decoded JSON; on failure Err says why and
// Value is nil.
type Result struct {
	Kind  Kind
	Value any
	Err   error
}

// OK reports whether the check succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Array returns the decoded value as a JSON array.
// It returns false when the check failed or the value is not an array.
func (r Result) Array() ([]any, bool) {
	if !r.OK() {
		return nil, false
	}
	items, ok := r.Value.([]any)
	return items, ok
}

// Check decodes raw JSON and validates it against kind's schema.
// A nil raw slice is reported as ErrMissing.
func Check(kind Kind, raw []byte) Result {
	if raw == nil {
		return Result{Kind: kind, Err: ErrMissing}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return CheckValue(kind, v)
}

// CheckValue validates an already decoded JSON value against kind's schema.
func CheckValue(kind Kind, v any) Result {
	s, err := compiledSchema(kind)
	if err != nil {
		return Result{Kind: kind, Err: err}
	}
	if err := s.Validate(v); err != nil {
		return Result{Kind: kind, Err: fmt.Errorf("%w: %v", ErrInvalid, err)}
	}
	return Result{Kind: kind, Value: v}
}
