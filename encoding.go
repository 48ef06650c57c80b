package termcat

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// CHUNK_SIZE is the largest base64 payload carried by a single kitty frame
const CHUNK_SIZE = 4096

// EncodePNG losslessly encodes img into an in-memory PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64Encode encodes src with the standard base64 alphabet
func Base64Encode(src []byte) []byte {
	dst := make([]byte, base64.StdEncoding.EncodedLen(len(src)))
	base64.StdEncoding.Encode(dst, src)
	return dst
}

// ChunkBase64 base64-encodes data and splits the text into chunks of at most
// chunkSize bytes. The chunks share the encoded buffer.
func ChunkBase64(data []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		chunkSize = CHUNK_SIZE
	}

	encoded := Base64Encode(data)
	numChunks := (len(encoded) + chunkSize - 1) / chunkSize
	chunks := make([][]byte, 0, numChunks)

	for i := 0; i < len(encoded); i += chunkSize {
		end := min(i+chunkSize, len(encoded))
		chunks = append(chunks, encoded[i:end])
	}

	return chunks
}
