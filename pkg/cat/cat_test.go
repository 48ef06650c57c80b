package cat

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, opts Options, input string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New(opts, nil).Transform(strings.NewReader(input), &buf))
	return buf.String()
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		input    string
		expected string
	}{
		{
			name:     "no options is identity",
			input:    "a\tb\x01\x7f\xff\n\n\nend",
			expected: "a\tb\x01\x7f\xff\n\n\nend",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "squeeze blank",
			opts:     Options{SqueezeBlank: true},
			input:    "a\n\n\n\nb\n",
			expected: "a\n\nb\n",
		},
		{
			name:     "squeeze leading blanks",
			opts:     Options{SqueezeBlank: true},
			input:    "\n\n\nx\n",
			expected: "\nx\n",
		},
		{
			name:     "number all lines",
			opts:     Options{Number: true},
			input:    "x\n\ny\n",
			expected: "     1\tx\n     2\t\n     3\ty\n",
		},
		{
			name:     "number nonblank",
			opts:     Options{NumberNonblank: true},
			input:    "x\n\ny\n",
			expected: "     1\tx\n\n     2\ty\n",
		},
		{
			name:     "number nonblank wins",
			opts:     Options{Number: true, NumberNonblank: true},
			input:    "x\n\ny\n",
			expected: "     1\tx\n\n     2\ty\n",
		},
		{
			name:     "squeezed lines are not numbered",
			opts:     Options{Number: true, SqueezeBlank: true},
			input:    "a\n\n\n\nb\n",
			expected: "     1\ta\n     2\t\n     3\tb\n",
		},
		{
			name:     "unterminated last line",
			opts:     Options{Number: true},
			input:    "one\ntwo",
			expected: "     1\tone\n     2\ttwo",
		},
		{
			name:     "show ends",
			opts:     Options{ShowEnds: true},
			input:    "a\n\nb",
			expected: "a$\n$\nb",
		},
		{
			name:     "show ends implies nonprinting",
			opts:     Options{ShowEnds: true},
			input:    "\x01\t\n",
			expected: "^A\t$\n",
		},
		{
			name:     "show tabs",
			opts:     Options{ShowTabs: true},
			input:    "a\tb\x1b\n",
			expected: "a^Ib^[\n",
		},
		{
			name:     "show nonprinting",
			opts:     Options{ShowNonprinting: true},
			input:    "\x00\x7f\x80\x9f\xa0\xff\t\n",
			expected: "^@^?M-^@M-^_M- M-^?\t\n",
		},
		{
			name:     "carriage return",
			opts:     Options{ShowNonprinting: true},
			input:    "dos line\r\n",
			expected: "dos line^M\n",
		},
		{
			name:     "all options",
			opts:     Options{NumberNonblank: true, SqueezeBlank: true, ShowEnds: true, ShowTabs: true},
			input:    "\tx\n\n\n\xe9\n",
			expected: "     1\t^Ix$\n$\n     2\tM-i$\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, run(t, tt.opts, tt.input))
		})
	}
}

func TestTransformLongLine(t *testing.T) {
	long := strings.Repeat("x", 10000)
	got := run(t, Options{Number: true}, long+"\n"+long)
	assert.Equal(t, "     1\t"+long+"\n     2\t"+long, got)
}

func TestTransformStateContinues(t *testing.T) {
	state := &State{}
	tr := New(Options{Number: true, SqueezeBlank: true}, state)

	var buf bytes.Buffer
	require.NoError(t, tr.Transform(strings.NewReader("a\n\n"), &buf))
	assert.Equal(t, State{Line: 2, PrevBlank: true}, *state)

	require.NoError(t, tr.Transform(strings.NewReader("\n\nb\n"), &buf))
	assert.Equal(t, "     1\ta\n     2\t\n     3\tb\n", buf.String())
	assert.Equal(t, State{Line: 3, PrevBlank: false}, *tr.State())
}

func TestTransformSharedState(t *testing.T) {
	state := &State{}
	var buf bytes.Buffer

	require.NoError(t, New(Options{NumberNonblank: true}, state).Transform(strings.NewReader("x\n"), &buf))
	require.NoError(t, New(Options{NumberNonblank: true}, state).Transform(strings.NewReader("y\n"), &buf))

	assert.Equal(t, "     1\tx\n     2\ty\n", buf.String())
}

// flushCounter records how often it is flushed
type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (f *flushCounter) Flush() error {
	f.flushes++
	return nil
}

func TestTransformUnbuffered(t *testing.T) {
	tests := []struct {
		name       string
		unbuffered bool
		input      io.Reader
		flushes    int
	}{
		{name: "flush every line", unbuffered: true, input: strings.NewReader("1\n2\n3"), flushes: 3},
		{name: "buffered", unbuffered: false, input: strings.NewReader("1\n2\n3"), flushes: 0},
		{name: "flush before a read that may block", unbuffered: false, input: iotest.OneByteReader(strings.NewReader("1\n2\n3")), flushes: 2},
		{name: "unbuffered slow reader", unbuffered: true, input: iotest.OneByteReader(strings.NewReader("1\n2\n3")), flushes: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink flushCounter
			tr := New(Options{Unbuffered: tt.unbuffered}, nil)
			require.NoError(t, tr.Transform(tt.input, &sink))
			assert.Equal(t, tt.flushes, sink.flushes)
			assert.Equal(t, "1\n2\n3", sink.String())
		})
	}
}

type errReader struct{ data string }

func (r *errReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, errors.New("device gone")
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTransformErrors(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		state := &State{}
		var buf bytes.Buffer
		err := New(Options{Number: true}, state).Transform(&errReader{data: "ok\npartial"}, &buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read input")
		assert.Equal(t, "     1\tok\n", buf.String())
		assert.Equal(t, 1, state.Line, "state keeps progress made before the failure")
	})

	t.Run("write", func(t *testing.T) {
		err := New(Options{}, nil).Transform(strings.NewReader("line\n"), errWriter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write output")
	})

	t.Run("buffered reader is reused", func(t *testing.T) {
		br := bufio.NewReader(strings.NewReader("a\nb\n"))
		var buf bytes.Buffer
		require.NoError(t, New(Options{}, nil).Transform(br, &buf))
		assert.Equal(t, "a\nb\n", buf.String())
	})
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name            string
		b               byte
		showTabs        bool
		showNonprinting bool
		expected        string
	}{
		{name: "printable", b: 'A', showNonprinting: true, expected: "A"},
		{name: "space", b: ' ', showNonprinting: true, expected: " "},
		{name: "newline never escaped", b: '\n', showTabs: true, showNonprinting: true, expected: "\n"},
		{name: "tab literal", b: '\t', showNonprinting: true, expected: "\t"},
		{name: "tab shown", b: '\t', showTabs: true, showNonprinting: true, expected: "^I"},
		{name: "tab shown without nonprinting", b: '\t', showTabs: true, expected: "^I"},
		{name: "nul", b: 0x00, showNonprinting: true, expected: "^@"},
		{name: "control A", b: 0x01, showNonprinting: true, expected: "^A"},
		{name: "escape", b: 0x1b, showNonprinting: true, expected: "^["},
		{name: "unit separator", b: 0x1f, showNonprinting: true, expected: "^_"},
		{name: "delete", b: 0x7f, showNonprinting: true, expected: "^?"},
		{name: "meta nul", b: 0x80, showNonprinting: true, expected: "M-^@"},
		{name: "meta tab", b: 0x89, showTabs: true, showNonprinting: true, expected: "M-^I"},
		{name: "meta control", b: 0x9f, showNonprinting: true, expected: "M-^_"},
		{name: "meta space", b: 0xa0, showNonprinting: true, expected: "M- "},
		{name: "meta printable", b: 0xc1, showNonprinting: true, expected: "M-A"},
		{name: "meta delete", b: 0xff, showNonprinting: true, expected: "M-^?"},
		{name: "control off", b: 0x01, expected: "\x01"},
		{name: "high byte off", b: 0xff, expected: "\xff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Escape(nil, tt.b, tt.showTabs, tt.showNonprinting)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestEscapeAppends(t *testing.T) {
	dst := []byte("prefix:")
	dst = Escape(dst, 0x01, false, true)
	dst = Escape(dst, 'z', false, true)
	assert.Equal(t, "prefix:^Az", string(dst))
}

func BenchmarkTransform(b *testing.B) {
	input := strings.Repeat("the quick brown fox\tjumps\x01 over\n\n", 1000)
	opts := Options{Number: true, ShowNonprinting: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = New(opts, nil).Transform(strings.NewReader(input), &buf)
	}
}
