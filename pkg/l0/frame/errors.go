package frame

import "errors"

var (
	// ErrChecksumMismatch indicates a complete frame failed checksum verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrFramingViolation indicates a byte other than the start marker
	// arrived between frames.
	ErrFramingViolation = errors.New("framing violation")
	// ErrFrameTimeout indicates the sender stalled in the middle of a frame.
	ErrFrameTimeout = errors.New("frame timeout")
	// ErrBufferOverflow indicates a payload length beyond Capacity.
	ErrBufferOverflow = errors.New("buffer overflow")
)
