package gostruct

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/gostruct/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema construction (fatal for the struct type being built)
	CodeUnknownType         = "unknown_type"
	CodeInvalidRedefinition = "invalid_redefinition"
	CodeInvalidDefault      = "invalid_default"
	// Per-call errors
	CodeInvalidType       = "invalid_type"
	CodeInvalidEnum       = "invalid_enum"
	CodeUndefinedProperty = "undefined_property"
	CodeInvalidState      = "invalid_state"
	CodeJSONError         = "json_error"
)

// Sentinel errors matched by errors.Is against Issues.
var (
	ErrSchema            = errors.New("gostruct: schema error")
	ErrTypeMismatch      = errors.New("gostruct: type mismatch")
	ErrUndefinedProperty = errors.New("gostruct: undefined property")
	ErrInvalidState      = errors.New("gostruct: invalid state")
	ErrJSON              = errors.New("gostruct: json error")
)

// Issue represents a single error entry.
type Issue struct {
	Path    string // JSON Pointer of the property (for example: /childs/2/value1).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: caller location, remediation hints.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"string","actual":"integer"})
	// for i18n and diagnostics.
	Params map[string]any
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: expected string, got integer
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the family of the target sentinel.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if sentinelFor(it.Code) == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the underlying causes to errors.Is/As.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

func sentinelFor(code string) error {
	switch code {
	case CodeUnknownType, CodeInvalidRedefinition, CodeInvalidDefault:
		return ErrSchema
	case CodeInvalidType, CodeInvalidEnum:
		return ErrTypeMismatch
	case CodeUndefinedProperty:
		return ErrUndefinedProperty
	case CodeInvalidState:
		return ErrInvalidState
	case CodeJSONError:
		return ErrJSON
	}
	return nil
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds an Issue with a translated message.
func newIssue(p PathRef, code string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, stringParams(params)), Params: params}
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// rebaseIssues prefixes every issue path of err with base, so errors raised
// inside nested structs name the full property path.
func rebaseIssues(base PathRef, err error) error {
	child, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: base.Pointer(), Code: CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	prefix := base.Pointer()
	if prefix == "/" {
		return child
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = prefix
		case p[0] == '/':
			p = prefix + p
		default:
			p = prefix + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
