package relstore

import (
	"fmt"

	"github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func isValidFork(fork relpath.ForkNumber) error {
	if !fork.Valid() {
		return errors.NewValidationError(
			nil, errors.ErrValidationInvalidData, fmt.Sprintf("invalid fork number %d", int(fork)),
		).
			WithProvided(int(fork)).
			WithExpected(fmt.Sprintf("0..%d", int(relpath.MaxFork)))
	}
	return nil
}

func isValidBlock(blocknum int64) error {
	if blocknum < 0 {
		return errors.NewValidationError(
			nil, errors.ErrValidationInvalidData, fmt.Sprintf("block number must be non-negative, got %d", blocknum),
		).WithProvided(blocknum)
	}
	return nil
}

func isValidBuffer(buffer []byte) error {
	if int64(len(buffer)) != options.BlockSize {
		return errors.NewValidationError(
			nil, errors.ErrValidationInvalidData,
			fmt.Sprintf(
				"buffer must be exactly one block (%s), got %s",
				options.FormatBytes(uint64(options.BlockSize)), options.FormatBytes(uint64(len(buffer))),
			),
		).
			WithProvided(len(buffer)).
			WithExpected(options.BlockSize)
	}
	return nil
}

func isValidBlockArgs(fork relpath.ForkNumber, blocknum int64, buffer []byte) error {
	if err := isValidFork(fork); err != nil {
		return err
	}
	if err := isValidBlock(blocknum); err != nil {
		return err
	}
	return isValidBuffer(buffer)
}
