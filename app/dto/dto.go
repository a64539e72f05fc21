// Package dto defines the request and response payloads of the HTTP surface
package dto

// APIResponse is the envelope every JSON endpoint responds with
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// ErrorDetail carries a machine-readable error code plus optional context,
// such as per-field validation messages
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
