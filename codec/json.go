// JSON encoding, using goccy/go-json rather than encoding/json for lower
// allocation count on repeated Encode/Decode calls.
package codec

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// JSONCodec encodes values as JSON via goccy/go-json.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T, w io.Writer) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("codec: json encode: %w", err)
	}
	return nil
}

func (JSONCodec[T]) Decode(r io.Reader) (T, error) {
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("codec: json decode: %w", err)
	}
	return v, nil
}
