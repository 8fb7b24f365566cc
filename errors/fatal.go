package errors

// fatalError marks a stage failure that must halt admission on its route.
type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return "fatal: " + f.err.Error() }
func (f *fatalError) Unwrap() error { return f.err }

// Fatal marks err as fatal to its route. The failing exchange is dropped as
// usual and its route stops admitting new exchanges. Fatal(nil) returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err, or any error it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return As(err, &f)
}
