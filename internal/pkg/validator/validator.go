package validator

// Validator validates structs tagged with `validate:"..."` rules.
type Validator interface {
	// Validate returns nil when data passes every rule.
	Validate(data any) error
}
