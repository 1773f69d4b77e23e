package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventPong         Event = "pong"
	EventNotification Event = "notification"
)

// NotificationResponse wraps a live event pushed to an admin session, such
// as a certificate upload or a form response in their branch.
type NotificationResponse struct {
	Event   Event       `json:"event"`
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
	SentAt  string      `json:"sent_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
