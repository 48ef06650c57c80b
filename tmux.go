package termcat

import (
	"bytes"
	"os"
	"os/exec"
	"sync"
)

var (
	tmuxPassthroughEnabled bool
	tmuxPassthroughOnce    sync.Once
)

// InTmux checks if running inside tmux
func InTmux() bool {
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux"
}

// EnableTmuxPassthrough turns on allow-passthrough for the current pane.
// Graphics sequences are dropped by tmux without it.
func EnableTmuxPassthrough() bool {
	tmuxPassthroughOnce.Do(func() {
		// -p flag sets the option for the current pane only
		cmd := exec.Command("tmux", "set", "-p", "allow-passthrough", "on")

		// silence outputs
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil

		if err := cmd.Run(); err == nil {
			tmuxPassthroughEnabled = true
		}
	})
	return tmuxPassthroughEnabled
}

// wrapTmuxPassthrough wraps an escape sequence in the tmux DCS passthrough
// envelope: \ePtmux;\e{sequence with every \e doubled}\e\\
func wrapTmuxPassthrough(seq []byte) []byte {
	if len(seq) == 0 || seq[0] != 0x1b {
		return seq
	}
	var buf bytes.Buffer
	buf.Grow(len(seq) + 16)
	buf.WriteString("\x1bPtmux;\x1b")
	buf.Write(bytes.ReplaceAll(seq, []byte{0x1b}, []byte{0x1b, 0x1b}))
	buf.WriteString("\x1b\\")
	return buf.Bytes()
}
