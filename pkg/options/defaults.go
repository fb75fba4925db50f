package options

const (
	DefaultDataDir string = "/var/lib/relstore"

	// BlockSize is the fixed size of one block in bytes. Block addresses,
	// segment boundaries and all I/O are expressed in units of this size.
	// It is a compile-time constant of the on-disk layout, not an option.
	BlockSize int64 = 8192

	MinSegmentBlocks     int64 = 2
	MaxSegmentBlocks     int64 = 1 << 20
	DefaultSegmentBlocks int64 = 131072
)

var defaultOptions = Options{
	DataDir:       DefaultDataDir,
	SegmentBlocks: DefaultSegmentBlocks,
}

func DefaultOptions() Options {
	return defaultOptions
}
