package udf

import (
	"fmt"
	"io"
)

// FileHandle is a transient, single-threaded read cursor over one file's
// data (spec.md §4.8, §5 "FileHandle not thread-safe"). It is produced by
// Volume.Open and implements io.Reader.
type FileHandle struct {
	vol  *Volume
	node *Node
	size uint64
	pos  uint64

	inline []byte  // non-nil when AllocType == allocTypeInline
	exts   []Extent
	starts []uint64 // starts[i] is the file-relative byte offset of exts[i]
}

// openFile resolves a node's data layout ahead of the first Read, delegating
// extent resolution to the Allocation Walker. Grounded on
// s0up4200-go-bdinfo's File.Open.
func (v *Volume) openFile(n *Node) (*FileHandle, error) {
	fh := &FileHandle{vol: v, node: n, size: n.Size()}

	if n.entry.icbTag().AllocType() == allocTypeInline {
		base := n.entry.eaBase() + int(n.entry.extAttrLength())
		end := base + int(n.entry.allocDescsLength())
		if base > len(n.buf) {
			return nil, fmt.Errorf("udf: inline data offset out of range")
		}
		if end > len(n.buf) {
			end = len(n.buf)
		}
		fh.inline = n.buf[base:end]
		return fh, nil
	}

	exts, err := v.walkAllocations(n)
	if err != nil {
		return nil, err
	}
	fh.exts = exts
	fh.starts = make([]uint64, len(exts))
	var off uint64
	for i, ex := range exts {
		fh.starts[i] = off
		off += uint64(ex.Length)
	}
	return fh, nil
}

// Read implements io.Reader, streaming file data across extents and
// zero-filling holes, bounded by the node's declared InformationLength.
func (fh *FileHandle) Read(p []byte) (int, error) {
	if fh.pos >= fh.size {
		return 0, io.EOF
	}
	remaining := fh.size - fh.pos
	want := len(p)
	if uint64(want) > remaining {
		want = int(remaining)
	}

	if fh.inline != nil {
		n := copy(p[:want], fh.inline[fh.pos:])
		fh.pos += uint64(n)
		return fh.eofIfDone(n)
	}

	n := 0
	for n < want {
		idx, extOff, ok := fh.locate(fh.pos)
		if !ok {
			break
		}
		ext := fh.exts[idx]
		avail := ext.Length - extOff
		toRead := uint32(want - n)
		if toRead > avail {
			toRead = avail
		}
		dst := p[n : n+int(toRead)]

		if ext.Hole {
			for i := range dst {
				dst[i] = 0
			}
		} else if err := fh.vol.br.readAt(ext.Sector, int(extOff), dst); err != nil {
			return n, err
		}

		n += int(toRead)
		fh.pos += uint64(toRead)
	}

	if n == 0 {
		return 0, io.EOF
	}
	return fh.eofIfDone(n)
}

func (fh *FileHandle) eofIfDone(n int) (int, error) {
	if fh.pos >= fh.size {
		return n, io.EOF
	}
	return n, nil
}

// locate returns the extent index covering file-relative byte offset pos
// and the offset within that extent.
func (fh *FileHandle) locate(pos uint64) (idx int, extOff uint32, ok bool) {
	for i, start := range fh.starts {
		end := start + uint64(fh.exts[i].Length)
		if pos >= start && pos < end {
			return i, uint32(pos - start), true
		}
	}
	return 0, 0, false
}

// Close releases the handle. Reads are backed by value-copied buffers and
// stateless block reads, so there is nothing to release explicitly.
func (fh *FileHandle) Close() error { return nil }

// Open resolves an ICB to a readable FileHandle (spec.md §4.12 Open).
func (v *Volume) Open(ad LongAD) (*FileHandle, error) {
	n, err := v.loadICB(ad)
	if err != nil {
		return nil, err
	}
	if n.IsDir() {
		return nil, fmt.Errorf("udf: %w: is a directory", ErrNotFound)
	}
	return v.openFile(n)
}
