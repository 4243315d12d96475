package responses

// Envelope wraps successful REST payloads.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is the machine-readable part of a rejected request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
