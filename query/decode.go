package query

import (
	"bytes"

	"github.com/mrivera-dev/cellar/codec"
)

func decodeBytes[T any](c codec.ObjectCodec[T], data []byte) (T, error) {
	return c.Decode(bytes.NewReader(data))
}
