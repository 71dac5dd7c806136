// Package encoding decodes uploaded OBJ bytes into UTF-8 text.
package encoding

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names Decode does not support.
var ErrUnknownCharset = errors.New("unknown charset")

// DefaultCharset is used when no charset is configured.
const DefaultCharset = "utf-8"

// Lookup returns the decoder for a charset name. Names are case-insensitive.
func Lookup(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "euc-kr", "cp949":
		return korean.EUCKR, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, charset)
	}
}

// Decode converts data to a UTF-8 string. A UTF-8 or UTF-16 byte order
// mark takes precedence over charset and is stripped.
func Decode(data []byte, charset string) (string, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return "", err
	}

	decoder := unicode.BOMOverride(enc.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", charset, err)
	}
	return string(result), nil
}

// BaseName strips the directory and a trailing ".obj" (any case) from an
// uploaded file name.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if strings.HasSuffix(strings.ToLower(name), ".obj") {
		name = name[:len(name)-len(".obj")]
	}
	return name
}
