// Package options provides data structures and functions for configuring the relstore storage manager.
package options

import (
	"fmt"
	"math"
	"strings"
)

// Defines the configuration parameters for a storage-manager instance.
type Options struct {
	// Specifies the base path under which relation files are stored.
	//
	// Default: "/var/lib/relstore"
	DataDir string `json:"dataDir"`

	// Defines how many blocks one segment file holds before the fork
	// rolls over to the next numbered segment file.
	//
	//  - Default: 131072 blocks (1GB of 8KB blocks)
	//  - Maximum: 1048576
	//  - Minimum: 2
	//
	// Every segment of a fork except the last holds exactly this many blocks.
	SegmentBlocks int64 `json:"segmentBlocks"`
}

type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := DefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentBlocks = opts.SegmentBlocks
	}
}

// Sets the base data directory for relation files.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the number of blocks per segment file.
func WithSegmentBlocks(blocks int64) OptionFunc {
	return func(o *Options) {
		if blocks >= MinSegmentBlocks && blocks <= MaxSegmentBlocks {
			o.SegmentBlocks = blocks
		}
	}
}

// SegmentBytes returns the byte length of a full segment file.
func (o *Options) SegmentBytes() int64 {
	return o.SegmentBlocks * BlockSize
}

// FormatBytes converts byte count to human-readable format for error messages.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	var units = []string{"B", "KB", "MB", "GB", "TB"}

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	exp := 0
	value := float64(bytes)

	for value >= unit && exp < len(units)-1 {
		value /= unit
		exp++
	}

	if math.Abs(value-math.Round(value)) < 0.01 {
		return fmt.Sprintf("%.0f %s", math.Round(value), units[exp])
	}
	return fmt.Sprintf("%.2f %s", value, units[exp])
}
