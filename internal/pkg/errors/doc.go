// Package errors provides application error types for the advising service.
//
// This package defines:
//   - AppError type with error classification
//   - Error constructors for the request and advising domain failures
//   - Error type checking helpers
//   - HTTP status code mapping
//
// # Error Types
//
//   - InvalidInput: Blank or malformed query text (400)
//   - UnknownCourse: Course identifier absent from the catalog (404)
//   - InfeasiblePlan: Prerequisite chain does not fit the remaining terms (422)
//   - StoreUnavailable: Course catalog was never loaded (503)
//   - Internal: Unexpected server error (500)
//
// # Usage
//
// Create errors using constructor functions:
//
//	return apperrors.UnknownCourse("ECO302")
//	return apperrors.InfeasiblePlan("ECO302", "prerequisite chain needs 3 terms")
//
// Check error types:
//
//	if apperrors.IsInfeasiblePlan(err) {
//	    // Explain the plan failure to the student
//	}
//
// # Error Wrapping
//
// Errors support wrapping with fmt.Errorf:
//
//	return fmt.Errorf("career pathway: %w", apperrors.UnknownCourse(id))
package errors
