package udf

import (
	"bytes"
	"encoding/binary"
)

// Fixture image layout (logical block size 2048, lb_shift 2):
//
//	block 48-51   volume descriptor sequence (PVD, PD, LVD, TD)
//	block 256     anchor volume descriptor pointer
//	partition starts at block 100, relative blocks:
//	  0  FSD
//	  1  root directory FE   (entries: hello.txt, link, sub)
//	  2  hello.txt FE        (inline "hello world")
//	  3  link FE             (inline symlink to /hello.txt)
//	  4  sub directory FE    (entries: .., nested.txt)
//	  5  nested.txt FE       (inline "nested data")
const (
	fixtureBlockSize  = 2048
	fixtureLBShift    = 2
	fixtureVDSBlock   = 48
	fixtureAVDPBlock  = 256
	fixturePartStart  = 100
	fixtureImageBytes = 300 * fixtureBlockSize
)

func blockOffset(block uint32) int { return int(block) * fixtureBlockSize }

func putAt(img []byte, block uint32, v any) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	copy(img[blockOffset(block):], buf.Bytes())
}

func putBytesAt(img []byte, block uint32, offset int, data []byte) {
	copy(img[blockOffset(block)+offset:], data)
}

// encodeName builds an 8-bit ("Latin-1") dchars buffer: compression id 8
// followed by the raw ASCII bytes.
func encodeName(s string) []byte {
	return append([]byte{8}, []byte(s)...)
}

type fixtureFID struct {
	name            string
	icbRelBlock     uint32
	characteristics uint8
}

// encodeFIDStream concatenates FID records (38-byte header + name,
// 4-byte-aligned) the way a UDF directory's embedded data stream does.
func encodeFIDStream(entries []fixtureFID) []byte {
	var out []byte
	for _, e := range entries {
		var nameBytes []byte
		if e.name != "" {
			nameBytes = encodeName(e.name)
		}
		hdr := fidHeader{
			Tag:                    Tag{TagIdentifier: tagFileIdentifier},
			FileCharacteristics:    e.characteristics,
			LengthOfFileIdentifier: uint8(len(nameBytes)),
			ICB:                    LongAD{Loc: LBAddr{LogicalBlockNumber: e.icbRelBlock, PartitionReferenceNumber: 0}},
		}
		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
			panic(err)
		}
		buf.Write(nameBytes)

		fidSize := (buf.Len() + 3) &^ 3
		rec := make([]byte, fidSize)
		copy(rec, buf.Bytes())
		out = append(out, rec...)
	}
	return out
}

// encodeSymlinkToHello builds the path component stream for an absolute
// symlink target "/hello.txt".
func encodeSymlinkToHello() []byte {
	root := []byte{pathCompRoot1, 0, 0, 0}
	name := encodeName("hello.txt")
	nameRec := append([]byte{pathCompName, byte(len(name)), 0, 0}, name...)
	return append(root, nameRec...)
}

func putInlineFE(img []byte, absBlock uint32, fileType uint8, payload []byte) {
	hdr := fileEntryHeader{
		Tag:                           Tag{TagIdentifier: tagFileEntry},
		ICBTag:                        ICBTag{FileType: fileType, Flags: allocTypeInline},
		InformationLength:             uint64(len(payload)),
		LengthOfAllocationDescriptors: uint32(len(payload)),
	}
	putAt(img, absBlock, hdr)
	putBytesAt(img, absBlock, fileEntryHeaderSize, payload)
}

// buildFixtureImage constructs a minimal but structurally complete UDF
// volume image in memory, exercising AVDP search, VRS check, VDS walk,
// partition-map fixup, FSD/root load, directory iteration (including a
// synthesized "." and a real PARENT ".." entry), inline file reads, and
// symlink decoding.
func buildFixtureImage() []byte {
	img := make([]byte, fixtureImageBytes)

	// VRS: NSR02 at byte offset 32768.
	copy(img[32768+1:32768+6], []byte("NSR02"))

	// AVDP at block 256 (offset 256*2048 == sector 1024 at lb_shift 1,
	// which Mount must reject in favor of lb_shift 2's own candidate).
	avdp := AnchorVolumeDescriptorPointer{
		Tag:     Tag{TagIdentifier: tagAnchorVolume, TagLocation: fixtureAVDPBlock},
		MainVDS: ExtentAD{Length: 4 * fixtureBlockSize, Location: fixtureVDSBlock},
	}
	putAt(img, fixtureAVDPBlock, avdp)

	// PVD. VolumeSetIdentifier is a dstring: the last byte holds the used
	// length (compression id + name bytes), per ostastring.DecodeDString.
	// The leading 16 decoded characters are clean lowercase hex, so UUID()
	// takes the "n >= 16" branch and returns them directly.
	pvd := PrimaryVolumeDescriptor{Tag: Tag{TagIdentifier: tagPrimaryVolume}}
	volSet := encodeName("0123456789abcdef")
	copy(pvd.VolumeSetIdentifier[:], volSet)
	pvd.VolumeSetIdentifier[len(pvd.VolumeSetIdentifier)-1] = byte(len(volSet))
	putAt(img, fixtureVDSBlock+0, pvd)

	// PD.
	pd := PartitionDescriptor{
		Tag:                       Tag{TagIdentifier: tagPartition},
		PartitionNumber:           0,
		PartitionStartingLocation: fixturePartStart,
		PartitionLength:           32,
	}
	putAt(img, fixtureVDSBlock+1, pd)

	// LVD + inline partition map table (one Type-1 map).
	var fsdLoc bytes.Buffer
	binary.Write(&fsdLoc, binary.LittleEndian, LongAD{
		Loc: LBAddr{LogicalBlockNumber: 0, PartitionReferenceNumber: 0},
	})
	lvd := LogicalVolumeDescriptor{
		Tag:                   Tag{TagIdentifier: tagLogicalVolume},
		LogicalBlockSize:      fixtureBlockSize,
		MapTableLength:        6,
		NumberOfPartitionMaps: 1,
	}
	// LogicalVolumeIdentifier is a dstring (used-length trailer in its last
	// byte), just like VolumeSetIdentifier above; this is what Label() reads.
	volName := encodeName("FIXTURE_VOL")
	copy(lvd.LogicalVolumeIdentifier[:], volName)
	lvd.LogicalVolumeIdentifier[len(lvd.LogicalVolumeIdentifier)-1] = byte(len(volName))
	copy(lvd.LogicalVolumeContentsUse[:], fsdLoc.Bytes())
	putAt(img, fixtureVDSBlock+2, lvd)
	putBytesAt(img, fixtureVDSBlock+2, binary_Size_LVD, []byte{1, 6, 0, 0, 0, 0})

	// TD.
	td := Tag{TagIdentifier: tagTerminating}
	putAt(img, fixtureVDSBlock+3, td)

	// FSD.
	fsd := FileSetDescriptor{
		Tag:             Tag{TagIdentifier: tagFileSet},
		RootDirectoryICB: LongAD{Loc: LBAddr{LogicalBlockNumber: 1, PartitionReferenceNumber: 0}},
	}
	putAt(img, fixturePartStart+0, fsd)

	// Root directory FE: hello.txt, link, sub.
	rootFIDs := encodeFIDStream([]fixtureFID{
		{name: "hello.txt", icbRelBlock: 2},
		{name: "link", icbRelBlock: 3},
		{name: "sub", icbRelBlock: 4, characteristics: fidCharDirectory},
	})
	putInlineFE(img, fixturePartStart+1, fileTypeDirectory, rootFIDs)

	// hello.txt FE.
	putInlineFE(img, fixturePartStart+2, fileTypeRegular, []byte("hello world"))

	// link FE (symlink to /hello.txt).
	putInlineFE(img, fixturePartStart+3, fileTypeSymlink, encodeSymlinkToHello())

	// sub directory FE: PARENT + nested.txt.
	subFIDs := encodeFIDStream([]fixtureFID{
		{name: "", icbRelBlock: 1, characteristics: fidCharParent | fidCharDirectory},
		{name: "nested.txt", icbRelBlock: 5},
	})
	putInlineFE(img, fixturePartStart+4, fileTypeDirectory, subFIDs)

	// nested.txt FE.
	putInlineFE(img, fixturePartStart+5, fileTypeRegular, []byte("nested data"))

	return img
}
