// Package ostastring decodes OSTA CS0 "dchars" and "dstring" byte strings
// into UTF-8, per ECMA-167 §1.7.2 / UDF 2.01 §2.1.1.
//
// Layout is grounded on s0up4200-go-bdinfo's Reader.decodeString
// (internal/fs/udf/reader.go), generalized into a standalone package and
// split into the two required entry points (C2 in the component design):
// dchars (no declared field size, used-length implicit in input length) and
// dstring (declared field size S, used length stored in byte S-1).
package ostastring

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidCompressionID is returned when the leading compression-id byte
// of a dchars buffer is neither 8 nor 16.
var ErrInvalidCompressionID = fmt.Errorf("ostastring: invalid compression id")

// ucs2be decodes OSTA CS0 16-bit big-endian code units to UTF-8. Grounded on
// the x/text UCS-2/UTF-16 decoder used by altmount's sevenzip processor for
// an analogous "prefixed wide-character" format.
var ucs2be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

// DecodeChars decodes a dchars buffer: byte 0 is the compression id (8 or
// 16), the remainder is the character data with no declared/used-length
// split. Empty input yields "" without error.
func DecodeChars(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	return decode(data[0], data[1:])
}

// DecodeDString decodes a dstring field of declared size fieldSize: byte
// fieldSize-1 holds the used length of the field (clamped to fieldSize-1),
// counting the compression id at byte 0, and only that many leading bytes
// are significant. Empty input yields "" without error.
func DecodeDString(data []byte, fieldSize int) (string, error) {
	if len(data) == 0 || fieldSize <= 0 {
		return "", nil
	}
	if fieldSize > len(data) {
		fieldSize = len(data)
	}
	used := int(data[fieldSize-1])
	if used > fieldSize-1 {
		used = fieldSize - 1
	}
	if used <= 0 {
		return "", nil
	}
	return DecodeChars(data[:used])
}

func decode(compID byte, rest []byte) (string, error) {
	switch compID {
	case 8:
		// 8-bit: each byte IS a Latin-1 code point. x/text has no encoder
		// narrower than this for "byte == rune"; a direct widen-and-cast is
		// the correct, not merely convenient, decode (see DESIGN.md).
		runes := make([]rune, 0, len(rest))
		for _, b := range rest {
			if b == 0 {
				break
			}
			runes = append(runes, rune(b))
		}
		return strings.TrimRight(string(runes), " "), nil
	case 16:
		s, err := ucs2be.String(string(rest))
		if err != nil {
			return "", fmt.Errorf("ostastring: ucs-2 decode: %w", err)
		}
		if idx := strings.IndexByte(s, 0); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimRight(s, " "), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidCompressionID, compID)
	}
}
