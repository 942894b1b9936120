// On-disk layout constants and the NEXT_ID cell.
//
// The file begins with an 8-byte little-endian NEXT_ID counter at offset
// 0, followed by a chain of fixed-width index blocks. Layout is
// versionless: every byte offset below is fixed for the life of the
// format.
package cellar

import (
	"encoding/binary"
)

// Fixed layout constants.
const (
	// IndicesPerBlock is the number of 24-byte slots per index block.
	IndicesPerBlock = 100

	// IndexSlotSize is the on-disk size of one slot: id, data_begin,
	// data_end, each a uint64.
	IndexSlotSize = 24

	// indexBlockNextPtrSize is the size of an index block's leading
	// next-block pointer.
	indexBlockNextPtrSize = 8

	// IndexBlockSize is the total on-disk size of one index block.
	IndexBlockSize = indexBlockNextPtrSize + IndicesPerBlock*IndexSlotSize

	// nextIDSize is the size of the NEXT_ID cell at offset 0.
	nextIDSize = 8

	// indexBlock0Offset is the file offset of the first index block.
	indexBlock0Offset = nextIDSize

	// minFileSize0 is the smallest legal file size: NEXT_ID cell plus one
	// (possibly empty) index block.
	minFileSize0 = nextIDSize + IndexBlockSize
)

// readNextID reads the NEXT_ID cell from offset 0.
func readNextID(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf[:nextIDSize])
}

// putNextID encodes id into an 8-byte little-endian cell.
func putNextID(id uint64) []byte {
	buf := make([]byte, nextIDSize)
	binary.LittleEndian.PutUint64(buf, id)
	return buf
}
