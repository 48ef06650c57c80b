/*
Package csi provides CSI (Control Sequence Introducer) query functions for terminal capabilities
*/
package csi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// QueryTimeout is the default timeout for CSI queries
const QueryTimeout = 100 * time.Millisecond

// QueryTextAreaSizeInPixels queries text area size in pixels using CSI 14t
// returns: width and height in pixels, or 0,0,false if query fails
func QueryTextAreaSizeInPixels() (width, height int, ok bool) {
	resp, ok := query(wrapTmuxPassthrough("\x1b[14t"), 't')
	if !ok {
		return 0, 0, false
	}
	return ParseTextAreaSize(resp)
}

// QueryPrimaryDeviceAttributes sends DA1 and returns the reported attributes
func QueryPrimaryDeviceAttributes() ([]int, bool) {
	resp, ok := query(wrapTmuxPassthrough("\x1b[c"), 'c')
	if !ok {
		return nil, false
	}
	return ParseDeviceAttributes(resp)
}

// ParseTextAreaSize parses a CSI 14t reply: CSI 4 ; height ; width t
func ParseTextAreaSize(response string) (width, height int, ok bool) {
	start := strings.Index(response, "[4;")
	if start == -1 {
		return 0, 0, false
	}
	remaining := response[start+3:]
	end := strings.IndexByte(remaining, 't')
	if end == -1 {
		return 0, 0, false
	}
	parts := strings.Split(remaining[:end], ";")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(parts[1])
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// ParseDeviceAttributes parses a DA1 reply: CSI ? Ps ; Ps ; ... c
func ParseDeviceAttributes(response string) ([]int, bool) {
	start := strings.Index(response, "[?")
	if start == -1 {
		return nil, false
	}
	remaining := response[start+2:]
	end := strings.IndexByte(remaining, 'c')
	if end == -1 {
		return nil, false
	}
	var attrs []int
	for _, field := range strings.Split(remaining[:end], ";") {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, false
		}
		attrs = append(attrs, v)
	}
	return attrs, len(attrs) > 0
}

// HasSixel reports whether DA1 attributes advertise sixel graphics (4)
func HasSixel(attrs []int) bool {
	// the first value is the conformance level, not a capability
	for i, v := range attrs {
		if i > 0 && v == 4 {
			return true
		}
	}
	return false
}

// QuerySupported checks if a terminal likely supports CSI queries
// This is a heuristic based on terminal type and environment
func QuerySupported() bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	// Some terminals are known to not support or have disabled CSI queries
	switch os.Getenv("TERM_PROGRAM") {
	case "Apple_Terminal":
		// Apple Terminal often has CSI queries disabled for security
		return false
	case "vscode":
		// VS Code integrated terminal may not support all CSI queries
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// maxResponse bounds how much of a reply is read before giving up
const maxResponse = 256

// query writes q to the controlling terminal and reads until terminator or timeout
func query(q string, terminator byte) (string, bool) {
	// Open controlling terminal
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", false
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return "", false
	}
	defer term.Restore(int(tty.Fd()), oldState)

	// ttys the runtime cannot poll (darwin) reject deadlines
	pollable := tty.SetReadDeadline(time.Time{}) == nil

	if _, err := tty.WriteString(q); err != nil {
		return "", false
	}

	if pollable {
		return readResponse(tty, terminator, QueryTimeout)
	}
	return readResponseAsync(tty, terminator, QueryTimeout)
}

// deadlineReader is a reader whose blocking reads can be bounded
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// readResponse reads a reply ending in terminator. Reads stop at the
// deadline, so nothing is left reading r once it returns.
func readResponse(r deadlineReader, terminator byte, timeout time.Duration) (string, bool) {
	if err := r.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", false
	}
	defer r.SetReadDeadline(time.Time{})

	var resp []byte
	buf := make([]byte, 64)
	for len(resp) <= maxResponse {
		n, err := r.Read(buf)
		resp = append(resp, buf[:n]...)
		if bytes.IndexByte(buf[:n], terminator) >= 0 {
			return string(resp), true
		}
		if err != nil {
			return "", false
		}
	}
	return "", false
}

// readResponseAsync is the fallback for readers without deadlines. The
// reading goroutine ends when the caller closes r.
func readResponseAsync(r io.Reader, terminator byte, timeout time.Duration) (string, bool) {
	responseChan := make(chan string, 1)
	go func() {
		var resp []byte
		buf := make([]byte, 64)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				resp = append(resp, buf[:n]...)
				if bytes.IndexByte(buf[:n], terminator) >= 0 {
					break
				}
			}
			if err != nil || len(resp) > maxResponse {
				break
			}
		}
		responseChan <- string(resp)
	}()

	select {
	case result := <-responseChan:
		return result, result != ""
	case <-time.After(timeout):
		return "", false
	}
}

// inTmux checks if running inside tmux
func inTmux() bool {
	return os.Getenv("TMUX") != "" || os.Getenv("TERM_PROGRAM") == "tmux"
}

// wrapTmuxPassthrough wraps an escape sequence for tmux passthrough if needed
func wrapTmuxPassthrough(output string) string {
	if inTmux() {
		if !strings.HasPrefix(output, "\x1b") {
			return output
		}
		// tmux passthrough format: \ePtmux;\e{escaped_sequence}\e\\
		// All \e (ESC) characters in the sequence must be doubled
		return fmt.Sprintf("\x1bPtmux;\x1b%s\x1b\\", strings.ReplaceAll(output, "\x1b", "\x1b\x1b"))
	}
	return output
}
