/*
Package cat implements the text side of rp: cat(1) style line numbering,
blank line squeezing and visible rendering of non-printing bytes.
*/
package cat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Options selects the cat(1) transformations applied to text
type Options struct {
	Number          bool // -n: number all output lines
	NumberNonblank  bool // -b: number non-blank output lines, wins over Number
	SqueezeBlank    bool // -s: collapse runs of blank lines into one
	ShowEnds        bool // -e: print $ before each newline, implies ShowNonprinting
	ShowTabs        bool // -t: print tabs as ^I, implies ShowNonprinting
	ShowNonprinting bool // -v: caret and meta notation for control bytes
	Unbuffered      bool // -u: flush the sink after every line
}

// nonprinting reports whether bytes go through Escape at all
func (o Options) nonprinting() bool {
	return o.ShowNonprinting || o.ShowEnds || o.ShowTabs
}

// State is carried across every input of one invocation so numbering and
// squeezing continue from one file to the next.
type State struct {
	Line      int  // last line number printed
	PrevBlank bool // previous line was blank
}

// Transformer streams inputs through the configured transformations
type Transformer struct {
	opts  Options
	state *State
}

// New returns a Transformer that records its progress in state.
// A nil state starts a fresh one.
func New(opts Options, state *State) *Transformer {
	if state == nil {
		state = &State{}
	}
	return &Transformer{opts: opts, state: state}
}

// State returns the shared state
func (t *Transformer) State() *State {
	return t.state
}

type flusher interface {
	Flush() error
}

// Transform copies r to w line by line applying the transformations.
// A final line without a newline is written without one.
//
// When w has a Flush method it is flushed before any read that may block,
// so interactive input is echoed line by line. Unbuffered additionally
// flushes after every line.
func (t *Transformer) Transform(r io.Reader, w io.Writer) error {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	flush, _ := w.(flusher)
	pending := false

	escape := t.opts.nonprinting()
	var out []byte

	for {
		if pending && br.Buffered() == 0 {
			if err := flush.Flush(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			pending = false
		}

		line, readErr := br.ReadSlice('\n')
		if errors.Is(readErr, bufio.ErrBufferFull) {
			// keep reading until the newline for overlong lines
			buf := append([]byte(nil), line...)
			for errors.Is(readErr, bufio.ErrBufferFull) {
				line, readErr = br.ReadSlice('\n')
				buf = append(buf, line...)
			}
			line = buf
		}
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("read input: %w", readErr)
		}
		if len(line) == 0 {
			return nil
		}

		out = t.appendLine(out[:0], line, escape)
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if flush != nil {
			pending = true
			if t.opts.Unbuffered {
				if err := flush.Flush(); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				pending = false
			}
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

// appendLine renders one raw line (newline included when present) onto dst
// and advances the state. A squeezed line renders as nothing.
func (t *Transformer) appendLine(dst, line []byte, escape bool) []byte {
	hadNewline := len(line) > 0 && line[len(line)-1] == '\n'
	if hadNewline {
		line = line[:len(line)-1]
	}
	blank := len(line) == 0

	if t.opts.SqueezeBlank && blank && t.state.PrevBlank {
		return dst
	}
	t.state.PrevBlank = blank

	switch {
	case t.opts.NumberNonblank:
		if !blank {
			dst = t.appendNumber(dst)
		}
	case t.opts.Number:
		dst = t.appendNumber(dst)
	}

	if escape {
		for _, b := range line {
			dst = Escape(dst, b, t.opts.ShowTabs, true)
		}
	} else {
		dst = append(dst, line...)
	}

	if t.opts.ShowEnds && hadNewline {
		dst = append(dst, '$')
	}
	if hadNewline {
		dst = append(dst, '\n')
	}
	return dst
}

// appendNumber advances the counter and appends it as "%6d\t"
func (t *Transformer) appendNumber(dst []byte) []byte {
	t.state.Line++
	n := strconv.Itoa(t.state.Line)
	for i := len(n); i < 6; i++ {
		dst = append(dst, ' ')
	}
	dst = append(dst, n...)
	return append(dst, '\t')
}

// Escape appends the visible form of b to dst.
//
//	'\n'            always literal
//	'\t'            ^I with showTabs, literal otherwise
//	0x00-0x1f       ^@ .. ^_ with showNonprinting
//	0x7f            ^? with showNonprinting
//	0x80-0xff       M- followed by the rule for b&0x7f, with showNonprinting
//
// Every other byte is appended unchanged.
func Escape(dst []byte, b byte, showTabs, showNonprinting bool) []byte {
	switch {
	case b == '\n':
		return append(dst, b)
	case b == '\t':
		if showTabs {
			return append(dst, '^', 'I')
		}
		return append(dst, b)
	case !showNonprinting:
		return append(dst, b)
	case b >= 0x80:
		dst = append(dst, 'M', '-')
		return appendControl(dst, b&0x7f)
	default:
		return appendControl(dst, b)
	}
}

// appendControl applies caret notation to a 7-bit byte
func appendControl(dst []byte, b byte) []byte {
	switch {
	case b < 0x20:
		return append(dst, '^', b+0x40)
	case b == 0x7f:
		return append(dst, '^', '?')
	default:
		return append(dst, b)
	}
}
