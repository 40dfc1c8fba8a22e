// Package textdecode turns raw file bytes into valid UTF-8 text.
package textdecode

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as UTF-8 text.
// Valid UTF-8 is used as is (without a byte order mark). Otherwise the
// encoding is detected from the content and contentType and the bytes are
// transcoded. If that still does not yield valid UTF-8, invalid sequences
// are dropped.
func Decode(data []byte, contentType string) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	if enc != nil {
		reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
		decoded, err := io.ReadAll(reader)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}

	return strings.ToValidUTF8(string(data), "")
}
