package models

// Event sources
const (
	SourceView         = "view"
	SourceConnectivity = "connectivity"
)

// Event is one change of a view query or of the connectivity state
type Event struct {
	Offset    int64  `json:"offset"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Seq       uint64 `json:"seq,omitempty"`
	Message   string `json:"message,omitempty"`
}

// EventsResponse is the response of GET /v1/events
type EventsResponse struct {
	Events     []Event `json:"events"`
	NextOffset int64   `json:"nextOffset"`
	HasMore    bool    `json:"hasMore"`
	Count      int     `json:"count"`
}
