package cellar

import "fmt"

// MinID is the lowest id the engine will ever mint. Ids below it are
// reserved so that a slot's on-disk id field of 0 can unambiguously mark
// the slot as free.
const MinID uint64 = 500

// MaxID is the highest id the engine will ever mint.
const MaxID uint64 = 1<<63 - 1

// Config holds the immutable parameters of an open engine.
type Config struct {
	// FilePath is the absolute path to the single data file.
	FilePath string

	// ScratchBufferSize is the size of the scratch byte buffer FileIO
	// reuses for every positioned read and write. Defaults to 64KB.
	ScratchBufferSize int

	// MinFileSize is the length the file is grown to on first creation.
	// Defaults to minFileSize0 (header + one index block) if smaller.
	MinFileSize int64

	// GrowthQuantum is the minimum chunk added to the file when the free
	// map cannot satisfy an allocation. Defaults to 64KB.
	GrowthQuantum int64

	// StartID is the first id handed out in a fresh file. Defaults to
	// MinID. Must be in [MinID, MaxID].
	StartID uint64

	// AdvisoryLock enables a best-effort single-instance guard (an
	// exclusive flock/LockFileEx on a sidecar "<path>.lock" file) that
	// raises ErrLocked when the same data file is opened twice. Defaults
	// to true.
	AdvisoryLock bool

	advisoryLockSet bool
}

// WithAdvisoryLock returns a copy of c with AdvisoryLock explicitly set,
// distinguishing "false because unset" from "false because requested" —
// the zero value of Config otherwise can't tell the two apart.
func (c Config) WithAdvisoryLock(v bool) Config {
	c.AdvisoryLock = v
	c.advisoryLockSet = true
	return c
}

// withDefaults returns a copy of c with zero-valued fields filled in, and
// validates the result. Never mutates c.
func (c Config) withDefaults() (Config, error) {
	if c.FilePath == "" {
		return Config{}, fmt.Errorf("%w: FilePath is required", ErrPreconditionViolated)
	}
	if c.ScratchBufferSize == 0 {
		c.ScratchBufferSize = 64 * 1024
	}
	if c.MinFileSize == 0 {
		c.MinFileSize = minFileSize0
	}
	if c.MinFileSize < minFileSize0 {
		c.MinFileSize = minFileSize0
	}
	if c.GrowthQuantum == 0 {
		c.GrowthQuantum = 64 * 1024
	}
	if c.StartID == 0 {
		c.StartID = MinID
	}
	if !c.advisoryLockSet {
		c.AdvisoryLock = true
	}

	if c.ScratchBufferSize < 0 {
		return Config{}, fmt.Errorf("%w: ScratchBufferSize must be positive", ErrPreconditionViolated)
	}
	if c.GrowthQuantum < 0 {
		return Config{}, fmt.Errorf("%w: GrowthQuantum must be non-negative", ErrPreconditionViolated)
	}
	if c.StartID < MinID || c.StartID > MaxID {
		return Config{}, fmt.Errorf("%w: StartID must be in [%d, %d]", ErrPreconditionViolated, MinID, MaxID)
	}
	return c, nil
}
