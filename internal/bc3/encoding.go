package bc3

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultEncoding is the code page most BC3 generators emit.
const DefaultEncoding = "cp1252"

// decode converts raw file bytes to a string using the requested code page,
// falling back through the encodings seen in the wild when the requested one
// cannot represent the input.
func decode(raw []byte, encoding string) (string, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	tried := map[string]bool{}
	for _, enc := range append([]string{encoding}, "cp1252", "latin1", "utf8", "cp850") {
		if tried[enc] {
			continue
		}
		tried[enc] = true
		if s, err := decodeWith(raw, enc); err == nil {
			return s, nil
		}
	}
	return "", fmt.Errorf("no usable encoding for input (tried %q first)", encoding)
}

func decodeWith(raw []byte, encoding string) (string, error) {
	switch strings.ToLower(encoding) {
	case "utf8", "utf-8":
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("input is not valid UTF-8")
		}
		return string(raw), nil
	case "cp1252", "windows-1252":
		return charmapString(raw, charmap.Windows1252)
	case "latin1", "latin-1", "iso-8859-1":
		return charmapString(raw, charmap.ISO8859_1)
	case "cp850":
		return charmapString(raw, charmap.CodePage850)
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func charmapString(raw []byte, cm *charmap.Charmap) (string, error) {
	out, err := cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
