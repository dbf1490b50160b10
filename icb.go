package udf

import "fmt"

// fileEntryLike is the tagged-union accessor set shared by FE and EFE
// (spec.md §3, §9 "Union of FE/EFE"). Both place their extended-attribute
// and allocation-descriptor tail at eaBase()+extAttrLength(); EFE differs
// from FE only in a larger fixed header.
type fileEntryLike interface {
	icbTag() ICBTag
	fileSize() uint64
	extAttrLength() uint32
	allocDescsLength() uint32
	eaBase() int
	modTime() Timestamp
}

type fileEntry struct {
	hdr fileEntryHeader
}

func (f *fileEntry) icbTag() ICBTag            { return f.hdr.ICBTag }
func (f *fileEntry) fileSize() uint64          { return f.hdr.InformationLength }
func (f *fileEntry) extAttrLength() uint32     { return f.hdr.LengthOfExtendedAttributes }
func (f *fileEntry) allocDescsLength() uint32  { return f.hdr.LengthOfAllocationDescriptors }
func (f *fileEntry) eaBase() int               { return fileEntryHeaderSize }
func (f *fileEntry) modTime() Timestamp        { return f.hdr.ModificationTime }

type extFileEntry struct {
	hdr extFileEntryHeader
}

func (f *extFileEntry) icbTag() ICBTag           { return f.hdr.ICBTag }
func (f *extFileEntry) fileSize() uint64         { return f.hdr.InformationLength }
func (f *extFileEntry) extAttrLength() uint32    { return f.hdr.LengthOfExtendedAttributes }
func (f *extFileEntry) allocDescsLength() uint32 { return f.hdr.LengthOfAllocationDescriptors }
func (f *extFileEntry) eaBase() int              { return extFileEntryHeaderSize }
func (f *extFileEntry) modTime() Timestamp       { return f.hdr.ModificationTime }

// Node is a transient handle on one File Entry or Extended File Entry: a
// heap buffer sized to one logical block, plus the partition reference
// under which the node's own ShortADs (if any) resolve (spec.md §3).
type Node struct {
	vol     *Volume
	partRef uint16
	buf     []byte
	entry   fileEntryLike
}

// Clone returns an independent copy of n, used to synthesize the leading
// "." directory entry (spec.md §4.9) without aliasing the parent's buffer.
func (n *Node) Clone() *Node {
	cp := make([]byte, len(n.buf))
	copy(cp, n.buf)
	clone := &Node{vol: n.vol, partRef: n.partRef, buf: cp}
	clone.entry = decodeEntryFromBuf(cp, clone.partRef)
	return clone
}

// IsDir reports whether the node's ICB file_type is DIR.
func (n *Node) IsDir() bool { return n.entry.icbTag().FileType == fileTypeDirectory }

// IsSymlink reports whether the node's ICB file_type is SYMLINK.
func (n *Node) IsSymlink() bool { return n.entry.icbTag().FileType == fileTypeSymlink }

// Size returns the node's declared information length.
func (n *Node) Size() uint64 { return n.entry.fileSize() }

// ModTime returns the node's modification timestamp, decoded to a Unix
// epoch using the rules in spec.md §6.
func (n *Node) ModTime() (int64, bool) { return decodeTimestamp(n.entry.modTime()) }

// decodeEntryFromBuf re-decodes a fileEntryLike view over an existing
// buffer without re-reading the disk (used by Clone, which already owns a
// private copy of the bytes).
func decodeEntryFromBuf(buf []byte, _ uint16) fileEntryLike {
	tag, err := readTag(buf)
	if err != nil {
		return nil
	}
	switch tag.TagIdentifier {
	case tagFileEntry:
		var fe fileEntry
		_ = decodeFixed(buf, &fe.hdr)
		return &fe
	case tagExtendedFileEntry:
		var efe extFileEntry
		_ = decodeFixed(buf, &efe.hdr)
		return &efe
	default:
		return nil
	}
}

// loadICB is the ICB Loader (C6): resolve a LongAD to an absolute sector,
// read one logical block, and require the tag to be FE or EFE. Grounded on
// s0up4200-go-bdinfo's readFileEntryWithData.
func (v *Volume) loadICB(ad LongAD) (*Node, error) {
	sector, err := v.resolve(ad.Loc.PartitionReferenceNumber, ad.Loc.LogicalBlockNumber)
	if err != nil {
		return nil, err
	}

	buf, err := v.br.readBlock(sector)
	if err != nil {
		return nil, err
	}

	tag, err := readTag(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEDescriptor, err)
	}

	node := &Node{vol: v, partRef: ad.Loc.PartitionReferenceNumber, buf: buf}
	switch tag.TagIdentifier {
	case tagFileEntry:
		var fe fileEntry
		if err := decodeFixed(buf, &fe.hdr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEDescriptor, err)
		}
		node.entry = &fe
	case tagExtendedFileEntry:
		var efe extFileEntry
		if err := decodeFixed(buf, &efe.hdr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEDescriptor, err)
		}
		node.entry = &efe
	default:
		return nil, fmt.Errorf("%w: tag %d at sector %d", ErrInvalidFEDescriptor, tag.TagIdentifier, sector)
	}

	v.lastICBSector = sector
	v.lastICBTagIdent = tag.TagIdentifier
	return node, nil
}
