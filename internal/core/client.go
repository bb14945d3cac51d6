package core

// Client is a connected chat participant as seen by the core layer.
// The transport owns the websocket; the core only knows the connection
// ID and the event channel drained by the transport's write loop.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan *Event, 16),
	}
}
