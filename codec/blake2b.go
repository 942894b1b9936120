// Blake2bChecksumCodec is ChecksumCodec's blake2b-based sibling: a
// cryptographic-strength checksum at a higher per-call cost, for callers
// who want it.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

const blake2bChecksumSize = 32

// Blake2bChecksumCodec prefixes the inner codec's output with a 32-byte
// blake2b-256 checksum.
type Blake2bChecksumCodec[T any] struct {
	Inner ObjectCodec[T]
}

func (c Blake2bChecksumCodec[T]) inner() ObjectCodec[T] {
	if c.Inner != nil {
		return c.Inner
	}
	return JSONCodec[T]{}
}

func (c Blake2bChecksumCodec[T]) Encode(v T, w io.Writer) error {
	var buf bytes.Buffer
	if err := c.inner().Encode(v, &buf); err != nil {
		return err
	}
	sum := blake2b.Sum256(buf.Bytes())
	if _, err := w.Write(sum[:]); err != nil {
		return fmt.Errorf("codec: blake2b write header: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("codec: blake2b write payload: %w", err)
	}
	return nil
}

func (c Blake2bChecksumCodec[T]) Decode(r io.Reader) (T, error) {
	var zero T
	var want [blake2bChecksumSize]byte
	if _, err := io.ReadFull(r, want[:]); err != nil {
		return zero, fmt.Errorf("codec: blake2b read header: %w", err)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("codec: blake2b read payload: %w", err)
	}
	if got := blake2b.Sum256(payload); got != want {
		return zero, fmt.Errorf("%w: blake2b checksum %x != stored %x", ErrChecksumMismatch, got, want)
	}
	return c.inner().Decode(bytes.NewReader(payload))
}
