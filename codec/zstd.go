// Zstd compression layered over another ObjectCodec. Constructing an
// encoder or decoder is expensive enough to matter on a hot path, so
// both are built once at package init and shared across calls.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// ZstdCodec compresses the bytes produced by an inner codec. Construct it
// with a zero value; Inner defaults to JSONCodec[T] if left nil.
type ZstdCodec[T any] struct {
	Inner ObjectCodec[T]
}

func (c ZstdCodec[T]) inner() ObjectCodec[T] {
	if c.Inner != nil {
		return c.Inner
	}
	return JSONCodec[T]{}
}

func (c ZstdCodec[T]) Encode(v T, w io.Writer) error {
	var buf bytes.Buffer
	if err := c.inner().Encode(v, &buf); err != nil {
		return err
	}
	compressed := zstdEncoder.EncodeAll(buf.Bytes(), nil)
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("codec: zstd write: %w", err)
	}
	return nil
}

func (c ZstdCodec[T]) Decode(r io.Reader) (T, error) {
	var zero T
	compressed, err := io.ReadAll(r)
	if err != nil {
		return zero, fmt.Errorf("codec: zstd read: %w", err)
	}
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return zero, fmt.Errorf("codec: zstd decode: %w", err)
	}
	return c.inner().Decode(bytes.NewReader(raw))
}
