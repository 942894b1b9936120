package cellar

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func openTestFile(t *testing.T) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.bin")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFileIOWriteThenRead(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 16)

	io_.seek(0)
	if err := io_.writeAllFrom([]byte("hello world")); err != nil {
		t.Fatalf("write: %v", err)
	}

	io_.seek(0)
	got, err := io_.readExactly(11)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestFileIOWriteLargerThanScratch(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 4)

	data := bytes.Repeat([]byte("abcd"), 100)
	io_.seek(0)
	if err := io_.writeAllFrom(data); err != nil {
		t.Fatalf("write: %v", err)
	}

	io_.seek(0)
	got, err := io_.readExactly(int64(len(data)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("data written in scratch-sized chunks did not round trip")
	}
}

func TestFileIOReadPastEndOfFile(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 16)

	io_.seek(0)
	if err := io_.writeAllFrom([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	io_.seek(0)
	if _, err := io_.readExactly(10); err == nil {
		t.Fatal("expected an error reading past the end of the file")
	}
}

func TestFileIOGrowTo(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 16)

	if err := io_.growTo(100); err != nil {
		t.Fatalf("growTo: %v", err)
	}
	sz, err := io_.size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if sz != 100 {
		t.Fatalf("size = %d, want 100", sz)
	}

	// Growing to a smaller length is a no-op.
	if err := io_.growTo(50); err != nil {
		t.Fatalf("growTo (shrink attempt): %v", err)
	}
	sz, err = io_.size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if sz != 100 {
		t.Fatalf("size after no-op growTo = %d, want 100", sz)
	}
}

func TestFileIOTruncate(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 16)

	if err := io_.growTo(100); err != nil {
		t.Fatalf("growTo: %v", err)
	}
	if err := io_.truncate(40); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	sz, err := io_.size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if sz != 40 {
		t.Fatalf("size = %d, want 40", sz)
	}
}

func TestFileIOSeekResetsStagingQueue(t *testing.T) {
	f := openTestFile(t)
	io_ := newFileIO(f, 16)

	io_.seek(0)
	if err := io_.writeAllFrom([]byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	io_.seek(0)
	if err := io_.writeAllFrom([]byte("second-longer")); err != nil {
		t.Fatalf("write: %v", err)
	}

	io_.seek(0)
	got, err := io_.readExactly(13)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second-longer" {
		t.Errorf("got %q, want %q", got, "second-longer")
	}

	io_.seek(0)
	if io_.queue.Len() != 0 {
		t.Errorf("staging queue holds %d bytes after seek, want 0", io_.queue.Len())
	}
}
