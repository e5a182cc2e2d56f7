// Package validator wraps go-playground/validator for request DTOs.
//
// Errors are reported per field under the field's JSON name with a short
// human-readable message. Besides the stock tags, "notblank" rejects strings
// that contain only whitespace.
package validator
