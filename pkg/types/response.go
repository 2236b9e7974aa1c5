package types

// SuccessEnvelope wraps every successful JSON response.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope wraps every failure response. Error is always a
// human-readable string; processor failures also carry type/code details.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
