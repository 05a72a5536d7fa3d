// Package protocol implements the /voice_stream wire format.
//
// The peer multiplexes two kinds of WebSocket messages on one connection:
// binary messages carry encoded audio, text messages carry transcript lines
// of the form "<5 character sender tag><separator><message>".
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SenderTagLength is the fixed width of the sender tag of a text frame.
	SenderTagLength = 5
	minTextLength   = SenderTagLength + 1
	separator       = ':'
)

// ErrMalformedFrame is returned when a text frame is too short to carry a sender tag and separator.
var ErrMalformedFrame = errors.New("malformed text frame")

type FrameType int

const (
	FrameBinary FrameType = iota
	FrameText
)

func (t FrameType) String() string {
	switch t {
	case FrameBinary:
		return "binary"
	case FrameText:
		return "text"
	default:
		return fmt.Sprintf("FrameType(%d)", int(t))
	}
}

// Frame is one inbound WebSocket message: either Binary audio bytes or Text.
type Frame struct {
	Type   FrameType
	Binary []byte
	Text   string
}

func BinaryFrame(b []byte) Frame {
	return Frame{Type: FrameBinary, Binary: b}
}

func TextFrame(s string) Frame {
	return Frame{Type: FrameText, Text: s}
}

// IsKeepAlive reports whether the frame is an empty binary frame.
func (f Frame) IsKeepAlive() bool {
	return f.Type == FrameBinary && len(f.Binary) == 0
}

// TextMessage is a parsed text frame.
type TextMessage struct {
	Sender  string
	Message string
}

// IsFrom reports whether the message was sent by the given sender tag, ignoring case.
func (m TextMessage) IsFrom(sender string) bool {
	return strings.EqualFold(m.Sender, sender)
}

// ParseText splits a text frame into sender tag and message.
// The sender is exactly the first 5 characters, the 6th character is the
// separator and is not validated. The message is kept verbatim, including
// the space the peer writes after the separator.
func ParseText(s string) (TextMessage, error) {
	r := []rune(s)
	if len(r) < minTextLength {
		return TextMessage{}, fmt.Errorf("%w: %q has less than %d characters", ErrMalformedFrame, s, minTextLength)
	}

	return TextMessage{
		Sender:  string(r[:SenderTagLength]),
		Message: string(r[minTextLength:]),
	}, nil
}

// FormatText encodes a text frame the way the peer does, e.g. "Agent: hello".
// Sender tags are padded or truncated to the fixed tag width.
func FormatText(sender, msg string) string {
	r := []rune(sender)
	if len(r) > SenderTagLength {
		r = r[:SenderTagLength]
	}

	tag := string(r) + strings.Repeat(" ", SenderTagLength-len(r))

	return fmt.Sprintf("%s%c %s", tag, separator, msg)
}
