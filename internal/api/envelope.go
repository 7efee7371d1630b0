package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion lets clients detect envelope format changes.
const envelopeVersion = 1

// Envelope is the uniform JSON wrapper around every API response body.
// Success responses carry data; error responses carry error/code/details.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Human-readable error message"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// EnvelopeTransformer wraps every huma response body in the Envelope.
// Registered on the huma config so handlers return plain payloads.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	// Error bodies produced by RegisterErrorHandler.
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	// Transformers can run more than once; never double-wrap.
	if _, ok := v.(*Envelope); ok {
		return v, nil
	}

	success := len(status) > 0 && status[0] < '4'
	return &Envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
