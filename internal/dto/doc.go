// Package dto contains the HTTP request and response shapes.
//
// Handlers parse bodies with ParseAndValidate, which runs the struct's
// validate tags and turns any failure into an INVALID_INPUT application
// error:
//
//	var req dto.QueryRequest
//	if err := dto.ParseAndValidate(c, &req); err != nil {
//	    return err
//	}
package dto
