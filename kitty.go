package termcat

import (
	"bytes"
	"fmt"
	"image"
	"io"
)

// Kitty graphics protocol escape sequences
const (
	kittyStart = "\x1b_G"
	kittyEnd   = "\x1b\\"
)

// KittyEncoder transmits images with the kitty graphics protocol: the image
// is re-encoded as PNG, base64 encoded and sent in chunked APC frames.
type KittyEncoder struct {
	ChunkSize int
	Tmux      bool
}

// Protocol returns the protocol type
func (k *KittyEncoder) Protocol() Protocol {
	return Kitty
}

// Encode writes img as a sequence of kitty frames followed by a newline
func (k *KittyEncoder) Encode(w io.Writer, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := k.WriteFrames(w, data); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write kitty frames: %w", err)
	}
	return nil
}

// WriteFrames base64 encodes payload and writes it as kitty frames.
//
// The first frame carries the transmission controls:
//
//	a=T    transmit and display
//	f=100  PNG data
//	t=d    direct (payload inline)
//	m=0|1  more chunks follow
//
// every following frame carries only m.
func (k *KittyEncoder) WriteFrames(w io.Writer, payload []byte) error {
	chunks := ChunkBase64(payload, k.ChunkSize)
	if len(chunks) == 0 {
		// an empty payload still needs one terminating frame
		chunks = [][]byte{nil}
	}

	var frame bytes.Buffer
	for i, chunk := range chunks {
		more := 1
		if i == len(chunks)-1 {
			more = 0
		}

		frame.Reset()
		frame.WriteString(kittyStart)
		if i == 0 {
			fmt.Fprintf(&frame, "a=T,f=100,t=d,m=%d;", more)
		} else {
			fmt.Fprintf(&frame, "m=%d;", more)
		}
		frame.Write(chunk)
		frame.WriteString(kittyEnd)

		out := frame.Bytes()
		if k.Tmux {
			out = wrapTmuxPassthrough(out)
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("failed to write kitty frames: %w", err)
		}
	}

	return nil
}
