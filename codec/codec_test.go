package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	Name  string
	Count int
	Tags  []string
}

func roundTrip[T any](t *testing.T, c ObjectCodec[T], v T) T {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Encode(v, &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestJSONCodecRoundTrip(t *testing.T) {
	v := sample{Name: "widget", Count: 3, Tags: []string{"a", "b"}}
	got := roundTrip[sample](t, JSONCodec[sample]{}, v)
	if got.Name != v.Name || got.Count != v.Count || len(got.Tags) != len(v.Tags) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestZstdCodecRoundTrip(t *testing.T) {
	v := sample{Name: "repeated", Count: 1000, Tags: []string{"x", "x", "x"}}
	got := roundTrip[sample](t, ZstdCodec[sample]{}, v)
	if got.Name != v.Name || got.Count != v.Count {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestZstdCodecReducesSizeForRepetitiveData(t *testing.T) {
	type blob struct{ Data string }
	v := blob{Data: string(bytes.Repeat([]byte("aaaaaaaaaa"), 1000))}

	var raw bytes.Buffer
	if err := (JSONCodec[blob]{}).Encode(v, &raw); err != nil {
		t.Fatalf("encode raw: %v", err)
	}
	var compressed bytes.Buffer
	if err := (ZstdCodec[blob]{}).Encode(v, &compressed); err != nil {
		t.Fatalf("encode zstd: %v", err)
	}
	if compressed.Len() >= raw.Len() {
		t.Errorf("zstd output %d bytes not smaller than raw %d bytes", compressed.Len(), raw.Len())
	}
}

func TestChecksumCodecRoundTrip(t *testing.T) {
	v := sample{Name: "checked", Count: 7}
	got := roundTrip[sample](t, ChecksumCodec[sample]{}, v)
	if got.Name != v.Name || got.Count != v.Count {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestChecksumCodecDetectsCorruption(t *testing.T) {
	v := sample{Name: "checked", Count: 7}
	var buf bytes.Buffer
	if err := (ChecksumCodec[sample]{}).Encode(v, &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err := (ChecksumCodec[sample]{}).Decode(bytes.NewReader(corrupted))
	if err == nil {
		t.Fatal("expected checksum mismatch, got nil error")
	}
}

func TestBlake2bChecksumCodecRoundTrip(t *testing.T) {
	v := sample{Name: "blaked", Count: 42}
	got := roundTrip[sample](t, Blake2bChecksumCodec[sample]{}, v)
	if got.Name != v.Name || got.Count != v.Count {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestBlake2bChecksumCodecDetectsCorruption(t *testing.T) {
	v := sample{Name: "blaked", Count: 42}
	var buf bytes.Buffer
	if err := (Blake2bChecksumCodec[sample]{}).Encode(v, &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err := (Blake2bChecksumCodec[sample]{}).Decode(bytes.NewReader(corrupted))
	if err == nil {
		t.Fatal("expected checksum mismatch, got nil error")
	}
}

func TestChecksumCodecOverZstd(t *testing.T) {
	inner := ZstdCodec[sample]{}
	c := ChecksumCodec[sample]{Inner: inner}
	v := sample{Name: "layered", Count: 99, Tags: []string{"a"}}
	got := roundTrip[sample](t, c, v)
	if got.Name != v.Name || got.Count != v.Count {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, v)
	}
}
