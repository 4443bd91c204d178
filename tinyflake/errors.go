package tinyflake

import "errors"

// Errors returned by Generator construction and NextID.
var (
	// ErrInvalidNode is returned when the configured node index exceeds MaxNode.
	ErrInvalidNode = errors.New("tinyflake: node must be in [0,3]")
	// ErrEpochAhead is returned when start_epoch is after the current clock time.
	ErrEpochAhead = errors.New("tinyflake: start epoch is ahead of current clock time")
	// ErrOverTimeLimit is returned when the elapsed seconds since the epoch
	// would overflow the 30-bit timestamp field.
	ErrOverTimeLimit = errors.New("tinyflake: elapsed time exceeds the 30-bit timestamp limit")
)
