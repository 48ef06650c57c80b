package termcat

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/blacktop/go-termcat/pkg/cat"
)

// StdinName is the input name that stands for standard input
const StdinName = "-"

// DispatchOptions configures a Dispatcher
type DispatchOptions struct {
	Cat     cat.Options
	Bounds  Bounds
	Encoder Encoder
	// Sniff classifies inputs by content when their extension is not an image one
	Sniff bool
	// Label prints each image's file name after it when several inputs are given
	Label bool
	// Stdin is read for "-" inputs; defaults to os.Stdin
	Stdin io.Reader
	// Logger receives debug output; defaults to log.Log
	Logger log.Interface
}

// Dispatcher routes every input either through the text transformer or
// through the image pipeline, writing both to a single output stream.
type Dispatcher struct {
	out   *bufio.Writer
	text  *cat.Transformer
	opts  DispatchOptions
	log   log.Interface
	stdin io.Reader
}

// NewDispatcher creates a Dispatcher writing to w. All inputs of one
// Dispatcher share a single numbering and blank-line state.
func NewDispatcher(w io.Writer, opts DispatchOptions) *Dispatcher {
	if opts.Bounds == (Bounds{}) {
		opts.Bounds = DefaultBounds()
	}
	if opts.Encoder == nil {
		opts.Encoder = &KittyEncoder{ChunkSize: CHUNK_SIZE}
	}
	d := &Dispatcher{
		out:   bufio.NewWriter(w),
		text:  cat.New(opts.Cat, &cat.State{}),
		opts:  opts,
		log:   opts.Logger,
		stdin: opts.Stdin,
	}
	if d.log == nil {
		d.log = log.Log
	}
	if d.stdin == nil {
		d.stdin = os.Stdin
	}
	return d
}

// State exposes the text state shared across inputs
func (d *Dispatcher) State() *cat.State {
	return d.text.State()
}

// Run processes inputs in order and stops at the first error. Output of the
// inputs before the failing one has already been flushed. No inputs means
// standard input.
func (d *Dispatcher) Run(inputs []string) error {
	if len(inputs) == 0 {
		inputs = []string{StdinName}
	}

	label := d.opts.Label && len(inputs) > 1 && !onlyStdin(inputs)

	for _, name := range inputs {
		if err := d.process(name, label); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) process(name string, label bool) error {
	if name == StdinName {
		return d.processReader(name, d.stdin, label)
	}

	f, err := os.Open(name)
	if err != nil {
		return newError(KindNotFound, name, "open", pathCause(err))
	}
	defer f.Close()

	if IsImagePath(name) {
		return d.processImage(name, f, label)
	}
	return d.processReader(name, f, label)
}

func (d *Dispatcher) processReader(name string, r io.Reader, label bool) error {
	br := bufio.NewReader(r)

	if d.opts.Sniff && SniffImage(br) {
		d.log.WithField("path", name).Debug("content looks like an image")
		return d.processImage(name, br, label)
	}

	if err := d.text.Transform(br, d.out); err != nil {
		return newError(KindIO, name, "cat", err)
	}
	return d.flush(name)
}

// processImage decodes, resizes and encodes one image. The whole protocol
// payload is materialized before anything reaches the sink.
func (d *Dispatcher) processImage(name string, r io.Reader, label bool) error {
	img, format, err := Decode(r)
	if err != nil {
		return newError(KindDecode, name, "decode", err)
	}

	src := img.Bounds()
	resized := ResizeToBounds(img, d.opts.Bounds)
	dst := resized.Bounds()

	d.log.WithFields(log.Fields{
		"path":   name,
		"format": format,
		"source": humanSize(src.Dx(), src.Dy()),
		"target": humanSize(dst.Dx(), dst.Dy()),
	}).Debug("decoded image")

	var frame bytes.Buffer
	if err := d.opts.Encoder.Encode(&frame, resized); err != nil {
		return newError(KindEncode, name, "encode "+d.opts.Encoder.Protocol().String(), err)
	}

	d.log.WithFields(log.Fields{
		"path":     name,
		"protocol": d.opts.Encoder.Protocol().String(),
		"payload":  humanize.Bytes(uint64(frame.Len())),
	}).Debug("encoded image")

	if _, err := d.out.Write(frame.Bytes()); err != nil {
		return newError(KindIO, name, "write", err)
	}
	if label {
		if _, err := d.out.WriteString(name + "\n"); err != nil {
			return newError(KindIO, name, "write", err)
		}
	}
	return d.flush(name)
}

func (d *Dispatcher) flush(name string) error {
	if err := d.out.Flush(); err != nil {
		return newError(KindIO, name, "flush", err)
	}
	return nil
}

func onlyStdin(inputs []string) bool {
	for _, in := range inputs {
		if in != StdinName {
			return false
		}
	}
	return true
}

// pathCause drops the *fs.PathError wrapper; the path is reported by Error
func pathCause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func humanSize(w, h int) string {
	return humanize.Comma(int64(w)) + "x" + humanize.Comma(int64(h))
}
