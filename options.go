package udf

import "github.com/go-logr/logr"

// Option configures Mount. Grounded on rstms-iso-kit's pkg/option
// functional-options pattern, applied directly to Volume since Mount builds
// the volume incrementally rather than through an intermediate options
// struct.
type Option func(*Volume)

// WithLogger sets the structured logger used for mount/read diagnostics.
// The zero value is logr.Discard().
func WithLogger(log logr.Logger) Option {
	return func(v *Volume) { v.log = log }
}

// WithMaxPartitions caps the number of Partition Descriptors accepted
// during the VDS walk, guarding against a malformed or hostile sequence
// that never emits a Terminating Descriptor.
func WithMaxPartitions(n int) Option {
	return func(v *Volume) { v.maxPartitions = n }
}

// WithMaxPartitionMaps caps the number of partition map entries accepted
// from a single Logical Volume Descriptor.
func WithMaxPartitionMaps(n int) Option {
	return func(v *Volume) { v.maxPartitionMaps = n }
}

// WithVRSStepCap bounds the number of 2048-byte steps taken while scanning
// the Volume Recognition Sequence before giving up with ErrNotUDF.
func WithVRSStepCap(n int) Option {
	return func(v *Volume) { v.vrsStepCap = n }
}

// WithReadHook installs a callback invoked on every read made through the
// volume's logical-block reader (VDS walk, FSD, ICB and AED loads, file
// data), naming the absolute sector, in-sector offset, and length. The AVDP
// search and VRS scan read the Disk directly and are not reported. Intended
// for test instrumentation and read-pattern diagnostics.
func WithReadHook(hook func(sector uint64, offset, n int)) Option {
	return func(v *Volume) {
		// br is allocated after options run during Mount, so stash the hook
		// and apply it once br exists.
		v.pendingReadHook = hook
	}
}
