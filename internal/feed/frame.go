// Package feed streams bar updates to websocket clients so a browser overlay
// can mirror the terminal bars.
package feed

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame is one bar update. Clients receive it as a binary msgpack message.
// Session tells apart actors of concurrent sessions that share a name.
type Frame struct {
	Session string  `msgpack:"id"`
	Actor   string  `msgpack:"a"`
	Stat    string  `msgpack:"s"`
	Fill    float64 `msgpack:"f"`
	Left    float64 `msgpack:"l"`
	Right   float64 `msgpack:"r"`
	Trail   bool    `msgpack:"t"`
}

func (f Frame) key() string { return f.Session + "/" + f.Actor + "/" + f.Stat }

// Encode marshals f for the wire.
func (f Frame) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame %s: %w", f.key(), err)
	}
	return data, nil
}

// DecodeFrame is the inverse of Encode.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
