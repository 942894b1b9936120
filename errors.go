package cellar

import "errors"

// Sentinel errors returned by engine operations. Callers use errors.Is to
// decide how to react; each maps to exactly one failure mode so that, for
// example, a corrupt file is never mistaken for a missing id.
var (
	// ErrNotFound is returned when an operation references an id that is
	// not present in the file.
	ErrNotFound = errors.New("cellar: id not found")

	// ErrClosed is returned when an operation is attempted after Close.
	ErrClosed = errors.New("cellar: engine is closed")

	// ErrPreconditionViolated is returned for length mismatches, invalid
	// configuration, or an attempt to reserve an interval not contained in
	// any free interval. The file is never touched when this is returned.
	ErrPreconditionViolated = errors.New("cellar: precondition violated")

	// ErrCorruption is returned by Open when the file's index chain or
	// slot contents are inconsistent. It is fatal: the engine refuses to
	// open.
	ErrCorruption = errors.New("cellar: data file is corrupt")

	// ErrIDExhausted is returned when minting a new id would exceed MaxID.
	ErrIDExhausted = errors.New("cellar: id space exhausted")

	// ErrLocked is returned by Open when the advisory single-instance
	// guard (see Config.AdvisoryLock) finds the file already open.
	ErrLocked = errors.New("cellar: data file is locked by another instance")
)
