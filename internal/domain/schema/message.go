package schema

// Inbound is the message contract consumed from the transport.
type Inbound struct {
	UserID int64
	ChatID int64
	Name   string
	Text   string
}

// Outbound is returned to the transport for delivery. Text may carry light
// HTML markup. An empty Text means nothing should be sent.
type Outbound struct {
	ChatID int64
	Text   string
}
