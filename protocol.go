package termcat

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
)

// Protocol identifies a terminal graphics protocol
type Protocol int

const (
	// Auto picks a protocol from the terminal environment
	Auto Protocol = iota
	// Kitty is the kitty graphics protocol (base64 PNG in APC frames)
	Kitty
	// Sixel is the DEC sixel raster protocol
	Sixel
)

func (p Protocol) String() string {
	switch p {
	case Auto:
		return "auto"
	case Kitty:
		return "kitty"
	case Sixel:
		return "sixel"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// ParseProtocol maps a protocol name (case-insensitive) to a Protocol
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "kitty":
		return Kitty, nil
	case "sixel":
		return Sixel, nil
	default:
		return Auto, fmt.Errorf("unsupported protocol: %q", s)
	}
}

// Encoder turns a resized image into the byte stream of one graphics protocol
type Encoder interface {
	// Encode writes the complete protocol payload for img to w
	Encode(w io.Writer, img image.Image) error

	// Protocol returns the protocol type
	Protocol() Protocol
}

// EncoderOptions configures the encoder returned by NewEncoder
type EncoderOptions struct {
	// Colors limits the sixel palette; 0 leaves it to the encoder
	Colors int
	// Background is composited under transparent pixels for sixel output
	Background color.RGBA
	// Dither enables median-cut palette reduction with error diffusion (sixel)
	Dither bool
	// Tmux wraps every sequence for tmux passthrough
	Tmux bool
}

// NewEncoder returns the encoder for p. Auto is resolved with DetectProtocol.
func NewEncoder(p Protocol, opts EncoderOptions) (Encoder, error) {
	switch p {
	case Auto:
		return NewEncoder(DetectProtocol(), opts)
	case Kitty:
		return &KittyEncoder{
			ChunkSize: CHUNK_SIZE,
			Tmux:      opts.Tmux,
		}, nil
	case Sixel:
		if opts.Colors != 0 && (opts.Colors < 2 || opts.Colors > 256) {
			return nil, fmt.Errorf("sixel colors must be between 2 and 256, got %d", opts.Colors)
		}
		return &SixelEncoder{
			Colors:     opts.Colors,
			Background: opts.Background,
			Dither:     opts.Dither,
			Tmux:       opts.Tmux,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", p)
	}
}
