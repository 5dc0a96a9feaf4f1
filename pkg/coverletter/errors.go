package coverletter

// Kind classifies a pipeline failure. Kinds are errors themselves so callers
// can match them with errors.Is.
type Kind string

func (k Kind) Error() (msg string) {
	msg = string(k)
	return msg
}

const (
	// ErrInputValidation means a required input was missing or unusable.
	// Nothing downstream was called.
	ErrInputValidation Kind = "invalid input"
	// ErrGeneration means the completion call failed or returned nothing usable.
	ErrGeneration Kind = "cover letter generation failed"
	// ErrRender means no valid PDF could be produced.
	ErrRender Kind = "pdf rendering failed"
)

// Error is a pipeline failure tagged with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() (msg string) {
	if e.Err == nil {
		msg = string(e.Kind)
		return msg
	}
	msg = string(e.Kind) + ": " + e.Err.Error()
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() (errs []error) {
	errs = []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, cause error) (err *Error) {
	err = &Error{Kind: kind, Err: cause}
	return err
}
