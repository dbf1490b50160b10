package udf

import "fmt"

// Disk is the block device abstraction the driver consumes (spec.md §6).
// Sector size is always 512 bytes; callers address by 512-byte sector plus
// an in-sector byte offset.
type Disk interface {
	// ReadAt reads length bytes starting at sectorOffset within sector
	// into dst. dst must be exactly length bytes.
	ReadAt(sector uint64, sectorOffset int, dst []byte) error
}

const physSectorSize = 512

// blockReader performs logical-block-addressed reads against a Disk,
// parameterized by lbShift (logical block size = 512 << lbShift), per
// spec.md §4.3. Grounded on s0up4200-go-bdinfo's Reader.readBlock/readFullAt.
type blockReader struct {
	disk     Disk
	lbShift  uint8
	readHook func(sector uint64, offset, n int)
}

func (b *blockReader) blockSize() int {
	return physSectorSize << b.lbShift
}

// readBlock reads one full logical block numbered blk.
func (b *blockReader) readBlock(blk uint32) ([]byte, error) {
	buf := make([]byte, b.blockSize())
	if err := b.readAt(blk, 0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readAt reads length(dst) bytes from logical block blk at byte offset off
// within that block.
func (b *blockReader) readAt(blk uint32, off int, dst []byte) error {
	sector := uint64(blk) << b.lbShift
	if b.readHook != nil {
		b.readHook(sector, off, len(dst))
	}
	if err := b.disk.ReadAt(sector, off, dst); err != nil {
		return fmt.Errorf("%w: sector %d off %d len %d: %v", ErrDiskIO, sector, off, len(dst), err)
	}
	return nil
}

// sliceDisk adapts a byte slice (e.g. a whole image read into memory, or an
// mmap) to the Disk interface. Exported for tests and simple callers; real
// block devices typically wrap os.File with an io.ReaderAt behind ReadAt.
type sliceDisk struct {
	data []byte
}

// NewSliceDisk returns a Disk backed by an in-memory byte slice.
func NewSliceDisk(data []byte) Disk {
	return &sliceDisk{data: data}
}

func (d *sliceDisk) ReadAt(sector uint64, sectorOffset int, dst []byte) error {
	start := sector*physSectorSize + uint64(sectorOffset)
	end := start + uint64(len(dst))
	if end > uint64(len(d.data)) {
		return fmt.Errorf("sliceDisk: read [%d,%d) out of range (size %d)", start, end, len(d.data))
	}
	copy(dst, d.data[start:end])
	return nil
}

// ReaderAtDisk adapts any io.ReaderAt (e.g. *os.File) to Disk.
type ReaderAtDisk struct {
	R interface {
		ReadAt(p []byte, off int64) (int, error)
	}
}

func (d ReaderAtDisk) ReadAt(sector uint64, sectorOffset int, dst []byte) error {
	off := int64(sector)*physSectorSize + int64(sectorOffset)
	n, err := d.R.ReadAt(dst, off)
	if err != nil && n < len(dst) {
		return err
	}
	return nil
}
