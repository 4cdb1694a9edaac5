package blockkit

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeBlank     = "blank"
	CodeTooLong   = "too_long"
	CodeTooShort  = "too_short"
	CodeInclusion = "inclusion"
	CodeInvalid   = "invalid"
	CodeTooSmall  = "too_small"
	CodeTooBig    = "too_big"
	CodeFormat    = "format"
	CodeNotNumber = "not_a_number"
	// Wire-level
	CodeDuplicateKey = "duplicate_key"
	// Cross-field rules
	CodeExactlyOne   = "exactly_one"
	CodeAtMostOne    = "at_most_one"
	CodeAtLeastOne   = "at_least_one"
	CodeUniqueness   = "uniqueness"
	CodeBusinessRule = "business_rule"
)

// Metadata keys carried by ValidationError.Metadata.
const (
	MetaMaximum       = "maximum"
	MetaMinimum       = "minimum"
	MetaInvalidValues = "invalid_values"
	MetaErrors        = "errors"
	MetaIndex         = "index"
)

// ValidationError represents a single validation entry.
type ValidationError struct {
	Path string // Dotted/bracket path (for example: elements[2].text). Empty for base errors.
	// Attribute is the top-level attribute of the validated document this
	// error belongs to. Empty for base (cross-field) errors.
	Attribute string
	Code      string // One of the codes listed above, or a free-form rule code.
	Message   string
	// Metadata carries structured parameters (e.g., {"maximum": 24}) for i18n
	// and fixers.
	Metadata map[string]any
}

// FullMessage renders the error as "<path> <message>", or just the message for
// base errors.
func (e ValidationError) FullMessage() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + " " + e.Message
}

// ValidationErrors is a collection of validation errors that implements error.
type ValidationErrors []ValidationError

// Error summarizes the first few errors.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(errs)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := errs[i]
		// e.g. blank at elements[0].text
		if it.Path == "" {
			fmt.Fprintf(b, "%s at base", it.Code)
		} else {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// On returns the errors recorded against the given top-level attribute.
func (errs ValidationErrors) On(attribute string) ValidationErrors {
	var out ValidationErrors
	for _, e := range errs {
		if e.Attribute == attribute {
			out = append(out, e)
		}
	}
	return out
}

// HasCode reports whether any error carries one of the given codes.
func (errs ValidationErrors) HasCode(codes ...string) bool {
	for _, e := range errs {
		for _, c := range codes {
			if e.Code == c {
				return true
			}
		}
	}
	return false
}

// Messages returns each error's full message, in order.
func (errs ValidationErrors) Messages() []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.FullMessage())
	}
	return out
}

// Flatten replaces every invalid error that wraps nested errors with those
// nested errors, recursively, so each returned entry points at the leaf
// attribute that actually failed (e.g. blocks[0].elements[1].text).
func (errs ValidationErrors) Flatten() ValidationErrors {
	var out ValidationErrors
	for _, e := range errs {
		nested, ok := e.Metadata[MetaErrors].(ValidationErrors)
		if e.Code == CodeInvalid && ok && len(nested) > 0 {
			out = append(out, nested.Flatten()...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// AppendErrors appends errors to the destination, initializing the slice when
// needed.
func AppendErrors(dst ValidationErrors, more ...ValidationError) ValidationErrors {
	if dst == nil {
		dst = ValidationErrors{}
	}
	dst = append(dst, more...)
	return dst
}

// AsValidationErrors extracts ValidationErrors from an error using errors.As
// internally. A *ValidationFailedError yields its carried errors.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var failed *ValidationFailedError
	if errors.As(err, &failed) {
		return failed.Errors, true
	}
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// ErrValidationFailed is matched by every *ValidationFailedError via errors.Is.
var ErrValidationFailed = errors.New("blockkit: validation failed")

// ValidationFailedError is returned by FixOrError when a document is still
// invalid after fixing. It carries the complete final error list.
type ValidationFailedError struct {
	Type   string
	Errors ValidationErrors
}

func (e *ValidationFailedError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Errors.Error())
	}
	return fmt.Sprintf("%s (%s): %s", ErrValidationFailed, e.Type, e.Errors.Error())
}

func (e *ValidationFailedError) Is(target error) bool { return target == ErrValidationFailed }

func (e *ValidationFailedError) Unwrap() error { return e.Errors }

// ErrUnknownAttribute is returned by Document.Set for names the schema does not declare.
var ErrUnknownAttribute = errors.New("blockkit: unknown attribute")
