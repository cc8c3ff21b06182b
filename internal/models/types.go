package models

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// GatewayHealth is the body of the gateway's own GET /health
type GatewayHealth struct {
	Status           string `json:"status"`
	APIBaseURL       string `json:"apiBaseUrl"`
	BackendState     string `json:"backendState"`
	BackendConnected bool   `json:"backendConnected"`
	EventOffset      int64  `json:"eventOffset"`
}

// ActionErrorResponse is returned when a view action is rejected. Snapshot
// holds the unchanged view state.
type ActionErrorResponse struct {
	ErrorResponse
	Snapshot any `json:"snapshot,omitempty"`
}
