package service

// Warning is a secondary, non-fatal outcome attached to a successful
// primary mutation, typically a notification that could not be sent.
// The empty string means the side effect went through. A Warning never
// turns a successful operation into a failure; handlers attach it to
// the success response body.
type Warning string

// None reports whether the side effect succeeded.
func (w Warning) None() bool { return w == "" }
