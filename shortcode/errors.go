package shortcode

import "fmt"

// InvalidLengthError reports a custom short code body outside [Min,Max].
type InvalidLengthError struct {
	Length, Min, Max int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("shortcode: length must be between %d and %d, got %d", e.Min, e.Max, e.Length)
}

// InvalidCharactersError reports a custom short code body with characters
// outside [A-Za-z0-9_-].
type InvalidCharactersError struct {
	Value string
}

func (e *InvalidCharactersError) Error() string {
	return fmt.Sprintf("shortcode: must contain only alphanumeric characters, hyphens, or underscores: %q", e.Value)
}

// MalformedError reports a wire-format short code that failed to decode:
// invalid base58 for a generated code, or a custom code that fails Validate.
type MalformedError struct {
	Kind   string
	Reason error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("shortcode: malformed %s short code: %v", e.Kind, e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Reason }

// InvalidKindError reports a wire discriminator that names neither the
// generated nor the custom variant.
type InvalidKindError struct {
	Kind uint8
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("shortcode: invalid wire kind discriminator %d", e.Kind)
}
