// Package validation provides struct tag and programmatic validation that
// reports failures as INVALID_INPUT application errors.
//
// # Struct Tag Validation
//
//	type Route struct {
//	    Method string `validate:"required,httpmethod"`
//	    Path   string `validate:"routepath"`
//	}
//	err := validation.Validate(route)
//
// # Programmatic Validation
//
//	v := validation.New().RequiredUUID("id", c.Param("id"))
//	if err := v.Validate(); err != nil {
//	    return nil, err
//	}
package validation
