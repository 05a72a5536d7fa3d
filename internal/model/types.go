package model

const (
	StatusIdle         = "Click to start recording"
	StatusReady        = "Ready to talk"
	StatusRecording    = "Recording..."
	StatusProcessing   = "Processing..."
	StatusSending      = "Sending audio..."
	StatusWaiting      = "Waiting for response..."
	StatusError        = "WebSocket error occurred."
	StatusReconnecting = "Connection closed. Reconnecting..."
	StatusLost         = "Connection lost. Please refresh."
)

// Controls is the sink the core components report user-visible state to.
// It represents the status text field and the capture (record) control.
type Controls interface {
	SetStatus(msg string)
	SetCaptureEnabled(enabled bool)
}

// ChatEntry is a single line of the transcript.
type ChatEntry struct {
	Sender  string
	Message string
}

// Recording is a finalized recording session.
type Recording struct {
	ID       string
	MimeType string
	Data     []byte
}
