package errors

// StorageError is a specialized error type for segment-file and fork operations.
type StorageError struct {
	*baseError
	segment  int
	block    int64
	fork     string
	fileName string
	path     string
}

// NewStorageError creates a new storage-specific error with the provided context.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg), segment: -1, block: -1}
}

// WithMessage updates the error message.
func (se *StorageError) WithMessage(msg string) *StorageError {
	se.baseError.WithMessage(msg)
	return se
}

// WithCode sets the error code.
func (se *StorageError) WithCode(code ErrorCode) *StorageError {
	se.baseError.WithCode(code)
	return se
}

// WithDetail adds contextual information.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.baseError.WithDetail(key, value)
	return se
}

// WithSegment sets which segment file was involved in the error.
func (se *StorageError) WithSegment(segno int) *StorageError {
	se.segment = segno
	return se
}

// WithBlock records the block number the operation was addressing.
func (se *StorageError) WithBlock(block int64) *StorageError {
	se.block = block
	return se
}

// WithFork records which relation fork was being accessed.
func (se *StorageError) WithFork(fork string) *StorageError {
	se.fork = fork
	return se
}

// WithFileName captures which file was being processed when the error occurred.
func (se *StorageError) WithFileName(fileName string) *StorageError {
	se.fileName = fileName
	return se
}

// WithPath captures which filesystem path was being processed during the error.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// Segment returns the segment index where the error occurred, or -1.
func (se *StorageError) Segment() int {
	return se.segment
}

// Block returns the block number the operation was addressing, or -1.
func (se *StorageError) Block() int64 {
	return se.block
}

// Fork returns the name of the fork that was being accessed.
func (se *StorageError) Fork() string {
	return se.fork
}

// FileName returns the name of the file that was being processed.
func (se *StorageError) FileName() string {
	return se.fileName
}

// Path returns the full filesystem path of the file that was being processed.
func (se *StorageError) Path() string {
	return se.path
}
