// Package protocol defines the messages pushed to the configuration UI over WebSocket.
package protocol

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeConsole carries one timestamped console line
	TypeConsole MessageType = "console"

	// TypeStatus carries the current selection and runner state
	TypeStatus MessageType = "status"

	// TypeRotations is sent after the rotation list changes
	TypeRotations MessageType = "rotations"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ConsolePayload is the payload for TypeConsole
type ConsolePayload struct {
	Line string `json:"line"`
}
