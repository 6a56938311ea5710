// Package protocol defines what travels between the server and its viewers:
// the handshake messages and the versioned frame encoding.
package protocol

import (
	"errors"
	"fmt"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/hashicorp/go-msgpack/v2/codec"
)

// WireVersion is bumped whenever the frame encoding changes incompatibly.
const WireVersion uint8 = 1

var ErrWireVersion = errors.New("unsupported wire version")

// Frame is everything that changed in the scene during one server tick.
// Receivers apply despawns, then spawns, then deltas.
type Frame struct {
	Tick     uint64               `codec:"t"`
	Time     float64              `codec:"ms"` // server clock at capture, milliseconds
	Baseline bool                 `codec:"b,omitempty"`
	Spawns   []*snapshot.Snapshot `codec:"s,omitempty"`
	Despawns []string             `codec:"x,omitempty"`
	Deltas   []*snapshot.Delta    `codec:"d,omitempty"`
}

// Empty reports whether the frame carries no changes.
func (f *Frame) Empty() bool {
	return len(f.Spawns) == 0 && len(f.Despawns) == 0 && len(f.Deltas) == 0
}

// FrameMessage is the router envelope of an encoded frame.
type FrameMessage struct {
	Version uint8
	Payload []byte
}

var handle = &codec.MsgpackHandle{}

func init() {
	handle.WriteExt = true
}

// Marshal encodes f with msgpack.
func Marshal(f *Frame) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, handle).Encode(f); err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Tick, err)
	}
	return out, nil
}

// Unmarshal decodes a frame produced by Marshal.
func Unmarshal(data []byte) (*Frame, error) {
	var f Frame
	if err := codec.NewDecoderBytes(data, handle).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}

// Encode wraps f in a message stamped with WireVersion.
func Encode(f *Frame) (FrameMessage, error) {
	payload, err := Marshal(f)
	if err != nil {
		return FrameMessage{}, err
	}
	return FrameMessage{Version: WireVersion, Payload: payload}, nil
}

// Decode unwraps a frame message, rejecting other wire versions.
func Decode(m FrameMessage) (*Frame, error) {
	if m.Version != WireVersion {
		return nil, fmt.Errorf("%w: %d, want %d", ErrWireVersion, m.Version, WireVersion)
	}
	return Unmarshal(m.Payload)
}
