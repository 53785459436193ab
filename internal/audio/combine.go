// Package audio joins synthesized segments into one byte stream.
package audio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Combine concatenates segments in order. No format awareness, no separators.
func Combine(segments [][]byte) []byte {
	size := 0
	for _, s := range segments {
		size += len(s)
	}

	out := make([]byte, 0, size)
	for _, s := range segments {
		out = append(out, s...)
	}
	return out
}

// CombineTo writes segments to w in order and returns the number of bytes written.
func CombineTo(w io.Writer, segments [][]byte) (int64, error) {
	var total int64
	for i, s := range segments {
		n, err := io.Copy(w, bytes.NewReader(s))
		total += n
		if err != nil {
			return total, fmt.Errorf("write segment %d: %w", i, err)
		}
	}
	return total, nil
}

// DecodeBase64Segments decodes each segment, tolerating a "data:...;base64," prefix.
func DecodeBase64Segments(encoded []string) ([][]byte, error) {
	out := make([][]byte, 0, len(encoded))
	for i, e := range encoded {
		if idx := strings.Index(e, ","); idx >= 0 && strings.HasPrefix(e, "data:") {
			e = e[idx+1:]
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(e))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: invalid base64: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
