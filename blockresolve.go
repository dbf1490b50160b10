package udf

import "fmt"

// PartitionMap is a Type-1 ("physical") partition map entry (spec.md §3).
// After Mount, PartNum is rewritten to index Volume.Partitions rather than
// naming the on-disk logical partition number.
type PartitionMap struct {
	VolumeSequenceNumber uint16
	PartNum              int
}

// resolve is the Block Resolver (C5): translate a (partition reference,
// partition-relative block) pair to an absolute logical-block number.
// Grounded on s0up4200-go-bdinfo's resolveLBAddr, restricted to Type-1 maps
// per spec.md (Type-2 virtual/sparable/metadata maps are a Non-goal).
func (v *Volume) resolve(partRef uint16, relBlock uint32) (uint32, error) {
	if int(partRef) >= len(v.PartitionMaps) {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrInvalidPartRef, partRef, len(v.PartitionMaps))
	}
	pd := v.Partitions[v.PartitionMaps[partRef].PartNum]
	return pd.PartitionStartingLocation + relBlock, nil
}
