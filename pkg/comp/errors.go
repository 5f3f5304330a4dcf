package comp

import "fmt"

// MissingOutputError reports a kernel that did not produce a quantity
// its schema declares.
type MissingOutputError struct {
	Component string
	Kind      Kind
	Quantity  string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("component %s did not produce declared %s output %q",
		e.Component, e.Kind, e.Quantity)
}

// ExtraOutputError reports a kernel that produced a quantity its schema
// does not declare.
type ExtraOutputError struct {
	Component string
	Kind      Kind
	Quantity  string
}

func (e *ExtraOutputError) Error() string {
	return fmt.Sprintf("component %s produced undeclared %s output %q",
		e.Component, e.Kind, e.Quantity)
}
