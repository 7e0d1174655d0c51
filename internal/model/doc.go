// Package model defines the entities of the example application.
//
// The example application keeps users and orchestras with their
// instruments. Test suites run against it to show that rows created inside
// a test never outlive the test's transaction.
//
// # Domain Entities
//
//   - User: account with a unique username and an optional password hash
//   - Orchestra: named group owning instruments
//   - Instrument: typed instrument with a purchase date
//
// # Validation
//
// Create requests validate themselves and report every problem at once:
//
//	req := &model.CreateUserRequest{Username: "jack-sparrow"}
//	if errs := req.Validate(); len(errs) > 0 {
//		return model.NewValidationError(errs)
//	}
package model
