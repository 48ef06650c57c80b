package termcat

import (
	"os"
	"strings"

	"github.com/blacktop/go-termcat/pkg/csi"
)

// DetectProtocol picks the graphics protocol for the current terminal.
// Kitty wins when both are available; with no evidence either way kitty is
// assumed.
func DetectProtocol() Protocol {
	if KittySupported() {
		return Kitty
	}
	if SixelSupported() {
		return Sixel
	}
	return Kitty
}

// KittySupported checks the environment for a terminal that speaks the kitty
// graphics protocol
func KittySupported() bool {
	termEnv := strings.ToLower(os.Getenv("TERM"))
	termProgram := os.Getenv("TERM_PROGRAM")

	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "":
		return true
	case strings.Contains(termEnv, "kitty"):
		return true
	case termProgram == "ghostty" || os.Getenv("GHOSTTY_RESOURCES_DIR") != "":
		return true
	case termProgram == "WezTerm":
		return true
	case termProgram == "rio":
		return true
	}

	// Konsole 22.04+ supports kitty graphics; KONSOLE_VERSION is like "220401"
	if version := os.Getenv("KONSOLE_VERSION"); len(version) >= 4 && version[:4] >= "2204" {
		return true
	}

	return false
}

// SixelSupported checks the environment for a sixel capable terminal and,
// when attached to an interactive terminal, asks it for its device
// attributes.
func SixelSupported() bool {
	termEnv := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	switch {
	case strings.Contains(termEnv, "sixel"):
		return true
	case strings.Contains(termEnv, "mlterm"):
		return true
	case strings.Contains(termEnv, "foot"):
		return true
	case strings.Contains(termEnv, "yaft"):
		return true
	case strings.Contains(termEnv, "xterm") && os.Getenv("XTERM_VERSION") != "":
		// xterm needs to be started with -ti 340 flag
		return csiSixelQuery()
	}

	switch {
	case strings.Contains(termProgram, "mlterm"):
		return true
	case termProgram == "mintty":
		return true
	case termProgram == "iTerm.app":
		return true
	}

	return csiSixelQuery()
}

func csiSixelQuery() bool {
	if !csi.QuerySupported() {
		return false
	}
	attrs, ok := csi.QueryPrimaryDeviceAttributes()
	return ok && csi.HasSixel(attrs)
}
