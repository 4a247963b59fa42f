package templet

import "fmt"

// SyntaxError reports a problem found while compiling a template. Its
// message is stable: it names the failure and quotes the offending token
// verbatim, e.g. "Don't understand if: '{% if %}'".
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

func syntaxErrorf(what, thing string) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf("%s: '%s'", what, thing)}
}

// NameError reports a render-time lookup of a name that is absent from the
// effective environment. It is distinct from LookupError, which covers a
// failed access on a value that is present.
type NameError struct {
	Name string
}

func (e *NameError) Error() string { return fmt.Sprintf("name '%s' is not defined", e.Name) }

// LookupError reports a failed attribute/item access on a present value.
type LookupError struct {
	Key string
	On  string // description of the value the access was attempted on
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("couldn't look up '%s' on %s", e.Key, e.On)
}
