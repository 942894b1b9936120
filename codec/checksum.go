// Checksum-prefixed codec using xxh3, a fast non-cryptographic hash, to
// detect whole-payload corruption. See blake2b.go for a
// cryptographic-strength alternative.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
)

// ChecksumCodec prefixes the inner codec's output with an 8-byte xxh3
// checksum, detecting payload corruption that the engine's own
// bookkeeping cannot see (it never inspects payload bytes). Decode
// returns ErrChecksumMismatch if the stored checksum and the recomputed
// one disagree.
type ChecksumCodec[T any] struct {
	Inner ObjectCodec[T]
}

func (c ChecksumCodec[T]) inner() ObjectCodec[T] {
	if c.Inner != nil {
		return c.Inner
	}
	return JSONCodec[T]{}
}

func (c ChecksumCodec[T]) Encode(v T, w io.Writer) error {
	var buf bytes.Buffer
	if err := c.inner().Encode(v, &buf); err != nil {
		return err
	}
	sum := xxh3.Hash(buf.Bytes())
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], sum)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("codec: checksum write header: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("codec: checksum write payload: %w", err)
	}
	return nil
}

func (c ChecksumCodec[T]) Decode(r io.Reader) (T, error) {
	var zero T
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return zero, fmt.Errorf("codec: checksum read header: %w", err)
	}
	want := binary.LittleEndian.Uint64(header[:])

	payload, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("codec: checksum read payload: %w", err)
	}
	if got := xxh3.Hash(payload); got != want {
		return zero, fmt.Errorf("%w: xxh3 checksum %x != stored %x", ErrChecksumMismatch, got, want)
	}
	return c.inner().Decode(bytes.NewReader(payload))
}
