package protocol

import "errors"

// MaxPayloadSize bounds a frame payload. Oversized frames are rejected
// before decoding.
const MaxPayloadSize = 1 << 20

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameEvent   FrameType = 0x01 // Client -> Server events
	FramePatches FrameType = 0x02 // Server -> Client patch batches
	FrameControl FrameType = 0x03 // Control messages (ping, resync)
	FrameError   FrameType = 0x04 // Error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame is one decoded wire message.
type Frame struct {
	Type    FrameType
	Payload []byte
}

var (
	// ErrEmptyFrame reports a message with no type byte.
	ErrEmptyFrame = errors.New("protocol: empty frame")

	// ErrPayloadTooLarge reports a payload over MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("protocol: payload too large")

	// ErrUnknownFrameType reports an unrecognized type byte.
	ErrUnknownFrameType = errors.New("protocol: unknown frame type")
)

// EncodeFrame prepends the type byte to an already-encoded payload.
func EncodeFrame(t FrameType, payload []byte) []byte {
	out := make([]byte, 0, 1+len(payload))
	out = append(out, byte(t))
	return append(out, payload...)
}

// DecodeFrame splits a wire message into its type and payload.
func DecodeFrame(msg []byte) (Frame, error) {
	if len(msg) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if len(msg)-1 > MaxPayloadSize {
		return Frame{}, ErrPayloadTooLarge
	}
	t := FrameType(msg[0])
	switch t {
	case FrameEvent, FramePatches, FrameControl, FrameError:
	default:
		return Frame{}, ErrUnknownFrameType
	}
	return Frame{Type: t, Payload: msg[1:]}, nil
}
