package termcat

import (
	"bufio"
	"bytes"
	"errors"
	"image"
	"path/filepath"
	"strings"
)

// sniffLen is how much of an input is inspected when classifying by content
const sniffLen = 512

// imageExtensions are the raster suffixes routed to the image path
var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "ico": {},
	"tiff": {}, "tif": {}, "webp": {}, "pnm": {}, "pbm": {}, "pgm": {},
	"ppm": {}, "tga": {}, "qoi": {}, "avif": {},
}

// IsImagePath reports whether path has a recognized raster image extension.
// The comparison is case-insensitive.
func IsImagePath(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(ext)]
	return ok
}

// SniffImage peeks at the start of br and reports whether it holds an image.
// Data without a NUL byte is text. Binary data counts as an image only when
// a registered decoder recognizes its magic, so other binaries stay on the
// text path. br is not advanced and at most one read is issued, so an
// interactive source is never waited on for a full header.
func SniffImage(br *bufio.Reader) bool {
	if _, err := br.Peek(1); err != nil {
		return false
	}
	head, _ := br.Peek(min(br.Buffered(), sniffLen))
	if len(head) == 0 || bytes.IndexByte(head, 0) < 0 {
		return false
	}
	// a truncated header still identifies the format
	_, _, err := image.DecodeConfig(bytes.NewReader(head))
	return err == nil || !errors.Is(err, image.ErrFormat)
}
