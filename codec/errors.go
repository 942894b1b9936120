package codec

import "errors"

// ErrChecksumMismatch is returned by a checksum codec's Decode when the
// stored checksum disagrees with the payload actually read.
var ErrChecksumMismatch = errors.New("codec: checksum mismatch")
