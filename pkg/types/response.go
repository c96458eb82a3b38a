package types

// RequestIDHeader correlates a response with the server logs.
const RequestIDHeader = "X-Request-Id"

// Envelope wraps every JSON payload the storefront API returns.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// Problem is the public description of a failed request.
type Problem struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ProblemEnvelope struct {
	Error Problem `json:"error"`
}
