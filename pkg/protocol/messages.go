package protocol

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/loomui-dev/loom/pkg/dom"
)

// WirePatch is one DOM mutation as sent to the client.
type WirePatch struct {
	Op     uint8  `msgpack:"op"`
	Node   uint64 `msgpack:"n,omitempty"`
	Parent uint64 `msgpack:"p,omitempty"`
	Before uint64 `msgpack:"b,omitempty"`
	Key    string `msgpack:"k,omitempty"`
	Value  string `msgpack:"v,omitempty"`
}

// FromDOM converts a recorded patch to its wire form.
func FromDOM(p dom.Patch) WirePatch {
	return WirePatch{
		Op:     uint8(p.Op),
		Node:   p.Node,
		Parent: p.Parent,
		Before: p.Before,
		Key:    p.Key,
		Value:  p.Value,
	}
}

// PatchBatch is every mutation of one scheduler turn.
type PatchBatch struct {
	Seq     uint64      `msgpack:"seq"`
	Patches []WirePatch `msgpack:"patches"`
}

// Event is a client interaction dispatched to a registered handler.
type Event struct {
	Name   string `msgpack:"name"`
	Target uint64 `msgpack:"target,omitempty"`
	Value  string `msgpack:"value,omitempty"`
}

// Control is a connection-level message.
type Control struct {
	Kind string `msgpack:"kind"` // "ping", "pong", "resync"
}

// ErrorReport tells the client something went wrong server-side.
type ErrorReport struct {
	Code    string `msgpack:"code"`
	Message string `msgpack:"message"`
}

// EncodePatchBatch encodes a patch batch as a complete frame.
func EncodePatchBatch(b PatchBatch) ([]byte, error) {
	payload, err := msgpack.Marshal(b)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(FramePatches, payload), nil
}

// DecodePatchBatch decodes a FramePatches payload.
func DecodePatchBatch(payload []byte) (PatchBatch, error) {
	var b PatchBatch
	err := msgpack.Unmarshal(payload, &b)
	return b, err
}

// EncodeEvent encodes an event as a complete frame.
func EncodeEvent(e Event) ([]byte, error) {
	payload, err := msgpack.Marshal(e)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(FrameEvent, payload), nil
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(payload []byte) (Event, error) {
	var e Event
	err := msgpack.Unmarshal(payload, &e)
	return e, err
}

// EncodeControl encodes a control message as a complete frame.
func EncodeControl(c Control) ([]byte, error) {
	payload, err := msgpack.Marshal(c)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(FrameControl, payload), nil
}

// DecodeControl decodes a FrameControl payload.
func DecodeControl(payload []byte) (Control, error) {
	var c Control
	err := msgpack.Unmarshal(payload, &c)
	return c, err
}

// EncodeError encodes an error report as a complete frame.
func EncodeError(e ErrorReport) ([]byte, error) {
	payload, err := msgpack.Marshal(e)
	if err != nil {
		return nil, err
	}
	return EncodeFrame(FrameError, payload), nil
}
