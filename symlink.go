package udf

import (
	"fmt"
	"strings"

	"github.com/s0up4200/goudf/internal/ostastring"
)

// Path Component types (ECMA-167 14.16.1, spec.md §4.10).
const (
	pathCompRoot1   = 1
	pathCompRoot2   = 2
	pathCompParent  = 3
	pathCompCurrent = 4
	pathCompName    = 5
)

// ReadSymlink is the Symlink Decoder (C10): parse a symlink node's data as a
// stream of Path Component records and render it as a slash-separated
// string. Bounds are checked strictly; any malformed, reserved, or
// out-of-range component fails the whole decode rather than producing a
// partial path, since a wrong symlink target is worse than none.
func (v *Volume) ReadSymlink(n *Node) (string, error) {
	if !n.IsSymlink() {
		return "", fmt.Errorf("udf: %w: not a symlink", ErrNotFound)
	}

	data, err := v.readNodeData(n)
	if err != nil {
		return "", err
	}

	var parts []string
	offset := 0
	for offset < len(data) {
		if offset+4 > len(data) {
			return "", fmt.Errorf("%w: truncated path component at offset %d", ErrInvalidSymlink, offset)
		}
		ctype := data[offset]
		clen := int(data[offset+1])
		reserved := uint16(data[offset+2]) | uint16(data[offset+3])<<8
		if reserved != 0 {
			return "", fmt.Errorf("%w: nonzero reserved field at offset %d", ErrInvalidSymlink, offset)
		}
		idStart := offset + 4
		idEnd := idStart + clen
		if idEnd > len(data) {
			return "", fmt.Errorf("%w: component identifier out of range", ErrInvalidSymlink)
		}

		switch ctype {
		case pathCompRoot1, pathCompRoot2:
			if clen != 0 {
				return "", fmt.Errorf("%w: root component with nonzero length", ErrInvalidSymlink)
			}
			// A root component resets output rather than requiring it be
			// first: it may legally recur mid-stream, discarding whatever
			// relative path had accumulated so far.
			parts = []string{""} // leading "" makes the eventual Join render an absolute path
		case pathCompParent:
			parts = append(parts, "..")
		case pathCompCurrent:
			parts = append(parts, ".")
		case pathCompName:
			if clen == 0 {
				return "", fmt.Errorf("%w: zero-length name component", ErrInvalidSymlink)
			}
			name, err := ostastring.DecodeChars(data[idStart:idEnd])
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidSymlink, err)
			}
			parts = append(parts, name)
		default:
			return "", fmt.Errorf("%w: reserved component type %d", ErrInvalidSymlink, ctype)
		}

		offset = idEnd
	}

	if len(parts) == 1 && parts[0] == "" {
		return "/", nil
	}
	return strings.Join(parts, "/"), nil
}
