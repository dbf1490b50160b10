package udf

import "errors"

// Sentinel errors for the UDF decoder. Callers compare with errors.Is;
// every returned error is wrapped with additional context via fmt.Errorf's
// %w verb, the same way s0up4200-go-bdinfo wraps disk/descriptor failures.
var (
	// ErrNotUDF is returned when no AVDP or VRS signature can be found.
	ErrNotUDF = errors.New("udf: not a UDF volume")

	// ErrDiskIO wraps a failure from the underlying Disk.
	ErrDiskIO = errors.New("udf: disk i/o error")

	// ErrInvalidTag is returned when a descriptor tag is unexpected or out
	// of range at a position where the spec requires a specific tag.
	ErrInvalidTag = errors.New("udf: invalid descriptor tag")

	// ErrInvalidFEDescriptor is returned when an ICB does not decode to a
	// File Entry or Extended File Entry.
	ErrInvalidFEDescriptor = errors.New("udf: invalid file entry descriptor")

	// ErrInvalidFIDTag is returned when a directory record's tag is not FID.
	ErrInvalidFIDTag = errors.New("udf: invalid file identifier descriptor tag")

	// ErrInvalidAEDTag is returned when a continuation extent's tag is not AED.
	ErrInvalidAEDTag = errors.New("udf: invalid allocation extent descriptor tag")

	// ErrTooManyPartitions is returned when the VDS walk collects more
	// Partition Descriptors than the configured cap.
	ErrTooManyPartitions = errors.New("udf: too many partition descriptors")

	// ErrTooManyPartitionMaps is returned when the LVD declares more
	// partition maps than the configured cap.
	ErrTooManyPartitionMaps = errors.New("udf: too many partition maps")

	// ErrUnsupportedPartMap is returned for any partition map type other
	// than Type 1 (virtual/sparable/metadata maps are out of scope).
	ErrUnsupportedPartMap = errors.New("udf: unsupported partition map type")

	// ErrPartitionNotFound is returned when a partition map references a
	// logical partition number with no matching Partition Descriptor.
	ErrPartitionNotFound = errors.New("udf: partition descriptor not found")

	// ErrInvalidPartRef is returned when a partition reference index is out
	// of range of the volume's partition map table.
	ErrInvalidPartRef = errors.New("udf: invalid partition reference")

	// ErrInvalidExtentType is returned for Extended Allocation Descriptors,
	// which this driver does not decode.
	ErrInvalidExtentType = errors.New("udf: unsupported extended allocation descriptor")

	// ErrInvalidString is returned when a dchars/dstring compression-id
	// prefix is neither 8 nor 16.
	ErrInvalidString = errors.New("udf: invalid string compression id")

	// ErrInvalidSymlink is returned when a Path Component record has an
	// unrecognized type or a nonzero reserved field.
	ErrInvalidSymlink = errors.New("udf: invalid symbolic link component")

	// ErrNotFound is returned when a node is not of the kind an operation
	// needs: ReadDir on a non-directory, ReadSymlink on a non-symlink, or
	// Open on a directory. Path lookup failures from Dir and OpenPath are the
	// pathresolve package's own errors and do not wrap ErrNotFound.
	ErrNotFound = errors.New("udf: not found")
)
