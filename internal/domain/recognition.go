package domain

import "time"

// DecisionResponseDTO is what the polling dashboard receives when a pending
// plate was consumed and decided.
type DecisionResponseDTO struct {
	Status string `json:"status"` // "approved" or "denied"
	Plate  string `json:"plate"`
}

// DecisionNotification is pushed to websocket subscribers after each
// decision. Purely informational; the poll endpoint stays the consumption
// path of record.
type DecisionNotification struct {
	EventID       string    `json:"event_id"`
	Plate         string    `json:"plate"`
	Approved      bool      `json:"approved"`
	ClientID      *int      `json:"client_id,omitempty"`
	SessionOpened bool      `json:"session_opened"`
	Timestamp     time.Time `json:"timestamp"`
}

// CameraEvent is the payload posted by standalone ANPR cameras to the event
// queue. Plate text passes the same normalization gate as frames from the
// local pipeline before it reaches the pending slot.
type CameraEvent struct {
	CameraID   string    `json:"camera_id"`
	Plate      string    `json:"plate"`
	Confidence float64   `json:"confidence"`
	EventTime  time.Time `json:"event_time"`
}

// ChartDataDTO maps each day-period bucket to its session-entry count.
// All five keys are always present.
type ChartDataDTO struct {
	Morning    int `json:"morning"`
	Midmorning int `json:"midmorning"`
	Midday     int `json:"midday"`
	Afternoon  int `json:"afternoon"`
	Night      int `json:"night"`
}
