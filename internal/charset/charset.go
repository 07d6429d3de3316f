// Package charset resolves, decodes and encodes the character encodings
// of Maven descriptors and of git merge-file output.
//
// Descriptors declare their encoding in the XML declaration line, so the
// actual encoding of a byte stream is only known once its first line has
// been read. Name lookup goes through golang.org/x/text: the IANA registry
// first (so "ISO-8859-1" means Latin-1 and not windows-1252), then the
// WHATWG index for loose aliases such as "utf8".
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	// UTF8 is the default encoding of descriptors without a declaration.
	UTF8 = "utf-8"

	// Latin1 is the fallback used when merge output is not valid UTF-8.
	Latin1 = "iso-8859-1"
)

// ErrUnsupported is returned when an encoding name is unknown or has no
// decoder available.
var ErrUnsupported = errors.New("unsupported encoding")

// declRegex matches encoding="..." or encoding='...' anywhere on a line.
var declRegex = regexp.MustCompile(`encoding=['"](.*?)['"]`)

// Declared returns the encoding declared on line, or def when the line
// carries no encoding attribute.
func Declared(line, def string) string {
	m := declRegex.FindStringSubmatch(line)
	if m == nil {
		return def
	}
	return m[1]
}

// FirstLine returns the bytes of data up to (not including) the first line
// break, as a string. Only the ASCII-compatible declaration is expected
// there, so no decoding is applied.
func FirstLine(data []byte) string {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

// isUTF8 reports whether name is a spelling of UTF-8.
func isUTF8(name string) bool {
	n := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	return n == "utf8"
}

// Lookup resolves an encoding name.
func Lookup(name string) (encoding.Encoding, error) {
	if isUTF8(name) {
		return unicode.UTF8, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// Supported reports whether name can be used with Decode and Encode.
func Supported(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Decode converts raw bytes in the named encoding into a string. Decoding
// is strict: invalid UTF-8 is an error rather than being replaced with
// U+FFFD.
func Decode(raw []byte, name string) (string, error) {
	if isUTF8(name) {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("decode %s: invalid byte sequence", name)
		}
		return string(raw), nil
	}

	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}

// Encode converts text into the named encoding. Runes the encoding cannot
// represent cause an error.
func Encode(text, name string) ([]byte, error) {
	if isUTF8(name) {
		return []byte(text), nil
	}

	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// DecodeMergeOutput decodes the stdout of git merge-file.
//
// It is a two-pass decode: the output is decoded optimistically as UTF-8
// (falling back to the given single-byte encoding when that fails), then
// the encoding declared on the first decoded line is compared with the one
// used. When they differ the raw bytes are decoded again with the declared
// encoding. It returns the text and the name of the encoding that produced
// it, which is also the encoding the result must be written back with.
func DecodeMergeOutput(raw []byte, fallback string) (string, string, error) {
	enc := UTF8
	text, err := Decode(raw, enc)
	if err != nil {
		enc = fallback
		text, err = Decode(raw, enc)
		if err != nil {
			return "", "", fmt.Errorf("merge output is neither UTF-8 nor %s: %w", fallback, err)
		}
	}

	declared := Declared(FirstLine([]byte(text)), enc)
	if strings.EqualFold(declared, enc) {
		return text, enc, nil
	}

	text, err = Decode(raw, declared)
	if err != nil {
		return "", "", fmt.Errorf("merge output declares %s: %w", declared, err)
	}
	return text, declared, nil
}

// CharsetReader adapts Lookup to encoding/xml's Decoder.CharsetReader hook
// so descriptors declaring a non-UTF-8 encoding can be parsed.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}
