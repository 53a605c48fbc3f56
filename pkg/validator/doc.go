// Package validator provides declarative validation rules used to check
// messages before they are handed to a provider.
//
// Each helper returns a Rule that pairs a Check func with a ValidationError.
// Apply evaluates rules and aggregates failures into ValidationErrors, which
// implements error and matches ErrValidationFailed under errors.Is:
//
//	err := validator.Apply(
//	    validator.RequiredSlice("to", msg.To),
//	    validator.ValidEmails("to", msg.To),
//	    validator.Required("subject", msg.Subject),
//	)
//	if errors.Is(err, validator.ErrValidationFailed) {
//	    // reject before any provider is contacted
//	}
//
// Rules are stateless and safe for concurrent use.
package validator
