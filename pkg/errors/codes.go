package errors

type ErrorCode string

const (
	ErrIOGeneral     ErrorCode = "IO_GENERAL"
	ErrIOShortRead   ErrorCode = "IO_SHORT_READ"
	ErrIOShortWrite  ErrorCode = "IO_SHORT_WRITE"
	ErrIOSyncFailed  ErrorCode = "IO_SYNC_FAILED"
	ErrIOCloseFailed ErrorCode = "IO_CLOSE_FAILED"

	ErrSegmentOpenFailed   ErrorCode = "SEGMENT_OPEN_FAILED"
	ErrSegmentCreateFailed ErrorCode = "SEGMENT_CREATE_FAILED"
	ErrSegmentNotFound     ErrorCode = "SEGMENT_NOT_FOUND"
	ErrSegmentUnlinkFailed ErrorCode = "SEGMENT_UNLINK_FAILED"

	ErrForkNotFound       ErrorCode = "FORK_NOT_FOUND"
	ErrForkExtendFailed   ErrorCode = "FORK_EXTEND_FAILED"
	ErrForkTruncateFailed ErrorCode = "FORK_TRUNCATE_FAILED"

	ErrSequenceViolation ErrorCode = "SEQUENCE_VIOLATION"
	ErrBlockOutOfRange   ErrorCode = "BLOCK_OUT_OF_RANGE"

	ErrSystemInternal     ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemInvalidInput ErrorCode = "SYSTEM_INVALID_INPUT"
	ErrSystemClosed       ErrorCode = "SYSTEM_CLOSED"

	ErrValidationInvalidData ErrorCode = "VALIDATION_INVALID_DATA"
)
