package schema

import "fmt"

// PropertiesError reports a malformed or inconsistent property schema:
// missing dims or units, alias collisions, or schemas that cannot be
// merged. Quantity names the offending quantity when known.
type PropertiesError struct {
	Quantity string
	Reason   string
}

func (e *PropertiesError) Error() string {
	if e.Quantity == "" {
		return fmt.Sprintf("schema: invalid properties: %s", e.Reason)
	}
	return fmt.Sprintf("schema: invalid properties for %s: %s", e.Quantity, e.Reason)
}

// StateError reports a state value that violates a schema's expectations:
// a missing quantity, a missing units attribute, inconvertible units,
// conflicting dimension lengths, or unexpected dimensions.
type StateError struct {
	Quantity string
	Reason   string
}

func (e *StateError) Error() string {
	if e.Quantity == "" {
		return fmt.Sprintf("schema: invalid state: %s", e.Reason)
	}
	return fmt.Sprintf("schema: invalid state for %s: %s", e.Quantity, e.Reason)
}
