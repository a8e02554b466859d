// Package encoding normalizes uploaded CSV files to UTF-8. Exports from the
// mobile apps arrive in a mix of UTF-8 (with or without BOM), UTF-16 and
// legacy Windows code pages.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// peekSize is enough bytes for BOM detection and charset heuristics.
const peekSize = 4096

// NewReader returns a reader that decodes r to UTF-8. A UTF-8 BOM is
// stripped; a UTF-16 BOM selects the matching decoder; otherwise valid UTF-8
// passes through, and anything else goes through chardet with Windows-1252 as
// the last resort.
func NewReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if rd, ok := bomReader(br, buf); ok {
		return rd, nil
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	return transform.NewReader(br, sniffDecoder(buf)), nil
}

func bomReader(br *bufio.Reader, buf []byte) (io.Reader, bool) {
	switch {
	case bytes.HasPrefix(buf, []byte{0xEF, 0xBB, 0xBF}):
		_, _ = br.Discard(3)
		return br, true
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), true
	case bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec), true
	}

	return nil, false
}

func sniffDecoder(buf []byte) *encoding.Decoder {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "ISO-8859-1", "windows-1252":
			return charmap.Windows1252.NewDecoder()
		case "ISO-8859-9":
			return charmap.ISO8859_9.NewDecoder()
		case "ISO-8859-15":
			return charmap.ISO8859_15.NewDecoder()
		}
	}

	return charmap.Windows1252.NewDecoder()
}
