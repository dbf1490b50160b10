package udf

import (
	"fmt"

	"github.com/go-logr/logr"
)

const (
	defaultMaxPartitions    = 64
	defaultMaxPartitionMaps = 16
	defaultVRSStepCap       = 64
)

// vrsIdentifier is a 5-byte ASCII Volume Recognition Sequence signature
// (spec.md §6).
type vrsIdentifier string

const (
	vrsBEA01 vrsIdentifier = "BEA01"
	vrsNSR02 vrsIdentifier = "NSR02"
	vrsNSR03 vrsIdentifier = "NSR03"
	vrsTEA01 vrsIdentifier = "TEA01"
	vrsBOOT2 vrsIdentifier = "BOOT2"
	vrsCD001 vrsIdentifier = "CD001"
	vrsCDW02 vrsIdentifier = "CDW02"
)

// Volume is the immutable-after-mount handle produced by Mount (spec.md
// §3). Partition map entries have already been rewritten so PartNum
// indexes Partitions.
type Volume struct {
	disk Disk
	br   *blockReader

	LBShift       uint8
	PVD           PrimaryVolumeDescriptor
	LVD           LogicalVolumeDescriptor
	Partitions    []PartitionDescriptor
	PartitionMaps []PartitionMap
	RootICB       LongAD

	log              logr.Logger
	maxPartitions    int
	maxPartitionMaps int
	vrsStepCap       int
	pendingReadHook  func(sector uint64, offset, n int)

	// Provenance (spec.md §9): the last ICB sector/tag observed, returned
	// explicitly via Provenance rather than held as process-global state.
	lastICBSector   uint32
	lastICBTagIdent uint16
}

// Mount performs the three-phase bring-up described in spec.md §4.4: AVDP
// search, VRS check, and VDS walk, followed by partition-map fixup and
// root FSD resolution. Grounded on s0up4200-go-bdinfo's Reader.initialize,
// generalized to try every (lb_shift, AVDP location) combination instead of
// assuming 2048-byte sectors and a fixed anchor location.
func Mount(disk Disk, opts ...Option) (*Volume, error) {
	v := &Volume{
		disk:             disk,
		log:              logr.Discard(),
		maxPartitions:    defaultMaxPartitions,
		maxPartitionMaps: defaultMaxPartitionMaps,
		vrsStepCap:       defaultVRSStepCap,
	}
	for _, opt := range opts {
		opt(v)
	}

	avdp, lbShift, err := findAnchor(disk)
	if err != nil {
		return nil, err
	}
	v.LBShift = lbShift
	v.br = &blockReader{disk: disk, lbShift: lbShift, readHook: v.pendingReadHook}

	if err := verifyVRS(disk, lbShift, v.vrsStepCap); err != nil {
		return nil, err
	}

	if err := v.walkVDS(avdp.MainVDS); err != nil {
		return nil, err
	}

	if err := v.fixupPartitionMaps(); err != nil {
		return nil, err
	}

	if err := v.loadRootFSD(); err != nil {
		return nil, err
	}

	v.log.V(1).Info("mounted UDF volume", "lbShift", v.LBShift, "partitions", len(v.Partitions), "partitionMaps", len(v.PartitionMaps))
	return v, nil
}

// findAnchor is phase 1 (spec.md §4.4 step 1): search lb_shift in {0,1,2,3}
// and AVDP location in {256,512} for a valid Anchor Volume Descriptor
// Pointer.
func findAnchor(disk Disk) (AnchorVolumeDescriptorPointer, uint8, error) {
	var buf [512]byte
	for lbShift := uint8(0); lbShift <= 3; lbShift++ {
		for _, b := range [...]uint32{256, 512} {
			sector := uint64(b) << lbShift
			if err := disk.ReadAt(sector, 0, buf[:]); err != nil {
				continue
			}
			var avdp AnchorVolumeDescriptorPointer
			if err := decodeFixed(buf[:], &avdp); err != nil {
				continue
			}
			if avdp.Tag.TagIdentifier == tagAnchorVolume && avdp.Tag.TagLocation == b {
				return avdp, lbShift, nil
			}
		}
	}
	return AnchorVolumeDescriptorPointer{}, 0, ErrNotUDF
}

// verifyVRS is phase 2 (spec.md §4.4 step 2): scan the Volume Recognition
// Sequence starting at byte offset 32768 in 2048-byte steps, bounded by
// stepCap (spec.md §9 open question).
func verifyVRS(disk Disk, lbShift uint8, stepCap int) error {
	const vrsStart = 32768
	const vrsStep = 2048

	var hdr [7]byte
	for i := 0; i < stepCap; i++ {
		off := uint64(vrsStart + i*vrsStep)
		sector := off / physSectorSize
		sectorOff := int(off % physSectorSize)
		if err := disk.ReadAt(sector, sectorOff, hdr[:]); err != nil {
			return fmt.Errorf("%w: VRS read at offset %d: %v", ErrNotUDF, off, err)
		}

		switch vrsIdentifier(hdr[1:6]) {
		case vrsBEA01, vrsBOOT2, vrsCD001, vrsCDW02:
			continue
		case vrsNSR02, vrsNSR03:
			return nil
		case vrsTEA01:
			return fmt.Errorf("%w: VRS terminated without NSR descriptor", ErrNotUDF)
		default:
			return fmt.Errorf("%w: unrecognized VRS identifier %q", ErrNotUDF, hdr[1:6])
		}
	}
	return fmt.Errorf("%w: VRS scan exceeded step cap %d", ErrNotUDF, stepCap)
}

// walkVDS is phase 3 (spec.md §4.4 step 3): read one tag per logical block
// of the Volume Descriptor Sequence, dispatching PVD/PD/LVD/TD.
func (v *Volume) walkVDS(vds ExtentAD) error {
	for i := uint32(0); ; i++ {
		block := vds.Location + i
		buf, err := v.br.readBlock(block)
		if err != nil {
			return err
		}
		tag, err := readTag(buf)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTag, err)
		}

		switch tag.TagIdentifier {
		case tagPrimaryVolume:
			var pvd PrimaryVolumeDescriptor
			if err := decodeFixed(buf, &pvd); err != nil {
				return fmt.Errorf("%w: PVD: %v", ErrInvalidTag, err)
			}
			v.PVD = pvd

		case tagPartition:
			if len(v.Partitions) >= v.maxPartitions {
				return fmt.Errorf("%w: cap %d", ErrTooManyPartitions, v.maxPartitions)
			}
			var pd PartitionDescriptor
			if err := decodeFixed(buf, &pd); err != nil {
				return fmt.Errorf("%w: PD: %v", ErrInvalidTag, err)
			}
			v.Partitions = append(v.Partitions, pd)

		case tagLogicalVolume:
			var lvd LogicalVolumeDescriptor
			if err := decodeFixed(buf, &lvd); err != nil {
				return fmt.Errorf("%w: LVD: %v", ErrInvalidTag, err)
			}
			v.LVD = lvd
			if err := v.parsePartitionMaps(buf, lvd); err != nil {
				return err
			}

		case tagTerminating:
			return nil

		default:
			if tag.TagIdentifier > tagTerminating {
				return fmt.Errorf("%w: %d at block %d", ErrInvalidTag, tag.TagIdentifier, block)
			}
			// Other VDS-range tags (volume pointer, implementation use,
			// unallocated space, LVID) are not needed by this driver;
			// skip and continue the walk.
		}
	}
}

// parsePartitionMaps decodes the LVD's variable-length partition map table.
// Only Type-1 ("physical") maps are accepted (spec.md §4.4 step 3); any other
// map type fails with ErrUnsupportedPartMap.
func (v *Volume) parsePartitionMaps(lvdBlock []byte, lvd LogicalVolumeDescriptor) error {
	tableOffset := binary_Size_LVD
	tableEnd := tableOffset + int(lvd.MapTableLength)
	if tableEnd > len(lvdBlock) {
		return fmt.Errorf("udf: LVD partition map table out of range (end %d, block %d)", tableEnd, len(lvdBlock))
	}
	table := lvdBlock[tableOffset:tableEnd]

	off := 0
	for i := uint32(0); i < lvd.NumberOfPartitionMaps; i++ {
		if off+2 > len(table) {
			return fmt.Errorf("udf: partition map %d: truncated header", i)
		}
		mtype := table[off]
		mlen := int(table[off+1])
		if mlen < 2 || off+mlen > len(table) {
			return fmt.Errorf("udf: partition map %d: invalid length %d", i, mlen)
		}

		if len(v.PartitionMaps) >= v.maxPartitionMaps {
			return fmt.Errorf("%w: cap %d", ErrTooManyPartitionMaps, v.maxPartitionMaps)
		}

		if mtype != 1 {
			return fmt.Errorf("%w: type %d", ErrUnsupportedPartMap, mtype)
		}
		if mlen < 6 {
			return fmt.Errorf("udf: partition map %d: type-1 map too short: %d", i, mlen)
		}
		volSeq := uint16(table[off+2]) | uint16(table[off+3])<<8
		partNum := uint16(table[off+4]) | uint16(table[off+5])<<8
		v.PartitionMaps = append(v.PartitionMaps, PartitionMap{
			VolumeSequenceNumber: volSeq,
			PartNum:              int(partNum), // on-disk partition number; rewritten in fixupPartitionMaps
		})

		off += mlen
	}
	return nil
}

// binary_Size_LVD is the fixed-header size of LogicalVolumeDescriptor
// (everything before the variable-length partition map table).
const binary_Size_LVD = 440

// fixupPartitionMaps rewrites each PartitionMaps[i].PartNum from the
// on-disk logical partition number to an index into v.Partitions (spec.md
// §4.4 step 4).
func (v *Volume) fixupPartitionMaps() error {
	for i, pm := range v.PartitionMaps {
		found := -1
		for j, pd := range v.Partitions {
			if int(pd.PartitionNumber) == pm.PartNum {
				found = j
				break
			}
		}
		if found < 0 {
			return fmt.Errorf("%w: logical partition %d", ErrPartitionNotFound, pm.PartNum)
		}
		v.PartitionMaps[i].PartNum = found
	}
	return nil
}

// loadRootFSD is phase 5 (spec.md §4.4 step 5): resolve the File Set
// Descriptor location embedded as a LongAD in the LVD's
// LogicalVolumeContentsUse field, read it, and record RootDirectoryICB.
func (v *Volume) loadRootFSD() error {
	var fsdLoc LongAD
	if err := decodeFixed(v.LVD.LogicalVolumeContentsUse[:], &fsdLoc); err != nil {
		return fmt.Errorf("udf: decoding file set location: %w", err)
	}

	sector, err := v.resolve(fsdLoc.Loc.PartitionReferenceNumber, fsdLoc.Loc.LogicalBlockNumber)
	if err != nil {
		return err
	}
	buf, err := v.br.readBlock(sector)
	if err != nil {
		return err
	}
	tag, err := readTag(buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	if tag.TagIdentifier != tagFileSet {
		return fmt.Errorf("%w: expected FSD(%d) got %d at sector %d", ErrInvalidTag, tagFileSet, tag.TagIdentifier, sector)
	}

	var fsd FileSetDescriptor
	if err := decodeFixed(buf, &fsd); err != nil {
		return fmt.Errorf("udf: decoding FSD: %w", err)
	}
	v.RootICB = fsd.RootDirectoryICB
	return nil
}

// BlockSize returns the volume's logical block size in bytes.
func (v *Volume) BlockSize() int { return v.br.blockSize() }
