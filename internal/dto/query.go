package dto

import "github.com/acadvisor/acadvisor/internal/domain"

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Text    string                 `json:"text" validate:"required,notblank,max=2000"`
	Context *domain.RequestContext `json:"context,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}
