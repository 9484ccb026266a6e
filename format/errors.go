package format

import "fmt"

// IOError wraps a failure performing a raw file operation (open, seek,
// read, write) against a region archive. Compare against it with
// errors.Is(err, format.ErrIO).
type IOError struct {
	Cause error
}

var ErrIO = &IOError{}

func (e *IOError) Error() string     { return fmt.Sprintf("archive io: %v", e.Cause) }
func (e *IOError) Unwrap() error     { return e.Cause }
func (e *IOError) Is(target error) bool { _, ok := target.(*IOError); return ok }

// DecodeError wraps a failure decoding a payload after decompression.
// Compare against it with errors.Is(err, format.ErrDecode).
type DecodeError struct {
	Cause error
}

var ErrDecode = &DecodeError{}

func (e *DecodeError) Error() string     { return fmt.Sprintf("archive decode: %v", e.Cause) }
func (e *DecodeError) Unwrap() error     { return e.Cause }
func (e *DecodeError) Is(target error) bool { _, ok := target.(*DecodeError); return ok }

// EncodeError wraps a failure encoding a payload before compression.
// Compare against it with errors.Is(err, format.ErrEncode).
type EncodeError struct {
	Cause error
}

var ErrEncode = &EncodeError{}

func (e *EncodeError) Error() string     { return fmt.Sprintf("archive encode: %v", e.Cause) }
func (e *EncodeError) Unwrap() error     { return e.Cause }
func (e *EncodeError) Is(target error) bool { _, ok := target.(*EncodeError); return ok }

// CompressError wraps a failure in the LZ4 framing layer. Compare against
// it with errors.Is(err, format.ErrCompress).
type CompressError struct {
	Cause error
}

var ErrCompress = &CompressError{}

func (e *CompressError) Error() string     { return fmt.Sprintf("archive compress: %v", e.Cause) }
func (e *CompressError) Unwrap() error     { return e.Cause }
func (e *CompressError) Is(target error) bool { _, ok := target.(*CompressError); return ok }

// HeaderInvalidError reports a header buffer of the wrong length. Compare
// against it with errors.Is(err, format.ErrHeaderInvalid).
type HeaderInvalidError struct {
	Len int
}

var ErrHeaderInvalid = &HeaderInvalidError{}

func (e *HeaderInvalidError) Error() string {
	return fmt.Sprintf("archive header: invalid length %d, want %d", e.Len, HeaderBytes)
}
func (e *HeaderInvalidError) Is(target error) bool { _, ok := target.(*HeaderInvalidError); return ok }

// WriteError reports a failure writing a chunk payload at the archive
// level, after the underlying IO/encode/compress steps have already
// succeeded (e.g. a sector-table invariant violation). Compare against it
// with errors.Is(err, format.ErrWrite).
type WriteError struct {
	Msg string
}

var ErrWrite = &WriteError{}

func (e *WriteError) Error() string        { return fmt.Sprintf("archive write: %s", e.Msg) }
func (e *WriteError) Is(target error) bool { _, ok := target.(*WriteError); return ok }

// ChunkLoadError reports a failure specific to loading one chunk, such as
// a local chunk index outside the region. Compare against it with
// errors.Is(err, format.ErrChunkLoad).
type ChunkLoadError struct {
	Msg string
}

var ErrChunkLoad = &ChunkLoadError{}

func (e *ChunkLoadError) Error() string        { return fmt.Sprintf("chunk load: %s", e.Msg) }
func (e *ChunkLoadError) Is(target error) bool { _, ok := target.(*ChunkLoadError); return ok }

// ChunkSaveError reports a failure specific to saving one chunk. Compare
// against it with errors.Is(err, format.ErrChunkSave).
type ChunkSaveError struct {
	Msg string
}

var ErrChunkSave = &ChunkSaveError{}

func (e *ChunkSaveError) Error() string        { return fmt.Sprintf("chunk save: %s", e.Msg) }
func (e *ChunkSaveError) Is(target error) bool { _, ok := target.(*ChunkSaveError); return ok }

// TaskRecvError reports that a caller's reply channel was closed or never
// answered, typically because the owning region worker exited. Compare
// against it with errors.Is(err, format.ErrTaskRecv).
type TaskRecvError struct {
	Msg string
}

var ErrTaskRecv = &TaskRecvError{}

func (e *TaskRecvError) Error() string        { return fmt.Sprintf("task recv: %s", e.Msg) }
func (e *TaskRecvError) Is(target error) bool { _, ok := target.(*TaskRecvError); return ok }
