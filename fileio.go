// Low-level positioned I/O over the data file.
//
// FileIO knows nothing about slots, ids, or free space — it does exactly
// the I/O the engine asks for, using a caller-sized scratch buffer and an
// internal staging queue (a bytes.Buffer). Reads and writes use
// ReadAt/WriteAt at the position set by seek, which each call advances
// past the bytes it read or wrote; the engine seeks before every call.
package cellar

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// fileIO wraps the single file handle the engine owns exclusively.
type fileIO struct {
	f       *os.File
	scratch []byte
	queue   bytes.Buffer
	pos     int64
}

func newFileIO(f *os.File, scratchSize int) *fileIO {
	return &fileIO{f: f, scratch: make([]byte, scratchSize)}
}

// seek sets the file position the next readExactly/writeAllFrom will use
// and clears the staging queue.
func (io_ *fileIO) seek(offset int64) {
	io_.pos = offset
	io_.queue.Reset()
}

// writeAllFrom drains data through the scratch buffer into the file at
// the current position, then fsyncs. Every mutating engine operation
// treats this fsync as its commit point.
func (io_ *fileIO) writeAllFrom(data []byte) error {
	io_.queue.Reset()
	io_.queue.Write(data)

	off := io_.pos
	for io_.queue.Len() > 0 {
		n, err := io_.queue.Read(io_.scratch)
		if n == 0 && err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("cellar: write: %w", err)
		}
		if _, werr := io_.f.WriteAt(io_.scratch[:n], off); werr != nil {
			return fmt.Errorf("cellar: write: %w", werr)
		}
		off += int64(n)
	}
	io_.pos = off

	if err := io_.f.Sync(); err != nil {
		return fmt.Errorf("cellar: fsync: %w", err)
	}
	return nil
}

// readExactly reads n bytes from the current position into the staging
// queue and returns them. Fails with a wrapped io.ErrUnexpectedEOF if the
// file is shorter than n bytes from pos.
func (io_ *fileIO) readExactly(n int64) ([]byte, error) {
	io_.queue.Reset()
	buf := make([]byte, n)
	read, err := io_.f.ReadAt(buf, io_.pos)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("cellar: read: %w", err)
	}
	if int64(read) < n {
		return nil, fmt.Errorf("cellar: read: %w", io.ErrUnexpectedEOF)
	}
	io_.pos += n
	io_.queue.Write(buf)
	return buf, nil
}

// growTo ensures the file is at least length bytes long, extending with
// zero bytes.
func (io_ *fileIO) growTo(length int64) error {
	cur, err := io_.size()
	if err != nil {
		return err
	}
	if cur >= length {
		return nil
	}
	if err := io_.f.Truncate(length); err != nil {
		return fmt.Errorf("cellar: grow: %w", err)
	}
	return nil
}

// truncate sets the file length, discarding bytes past length.
func (io_ *fileIO) truncate(length int64) error {
	if err := io_.f.Truncate(length); err != nil {
		return fmt.Errorf("cellar: truncate: %w", err)
	}
	return nil
}

// size returns the current file length.
func (io_ *fileIO) size() (int64, error) {
	info, err := io_.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("cellar: stat: %w", err)
	}
	return info.Size(), nil
}

// sync fsyncs the file.
func (io_ *fileIO) sync() error {
	if err := io_.f.Sync(); err != nil {
		return fmt.Errorf("cellar: fsync: %w", err)
	}
	return nil
}
