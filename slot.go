// Index-slot encode/decode and the Index value type.
//
// Every slot is a fixed 24-byte record: three little-endian uint64
// fields (id, data_begin, data_end). A slot with id == 0 is free; a free
// slot's begin/end are ignored on read and left untouched on free.
package cellar

import "encoding/binary"

// Index describes one live object: its id and the payload interval and
// on-disk slot that hold it. Immutable once constructed; Update produces
// a fresh Index rather than mutating an existing one.
type Index struct {
	ID         uint64
	DataBegin  int64
	DataEnd    int64
	SlotOffset int64
}

// Payload returns the Index's payload interval.
func (idx Index) Payload() Interval {
	return Interval{Begin: idx.DataBegin, End: idx.DataEnd}
}

// encodeSlot serializes (id, begin, end) into a 24-byte buffer.
func encodeSlot(id uint64, begin, end int64) []byte {
	buf := make([]byte, IndexSlotSize)
	binary.LittleEndian.PutUint64(buf[0:8], id)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(begin))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(end))
	return buf
}

// decodeSlot parses a 24-byte slot buffer into (id, begin, end).
func decodeSlot(buf []byte) (id uint64, begin, end int64) {
	id = binary.LittleEndian.Uint64(buf[0:8])
	begin = int64(binary.LittleEndian.Uint64(buf[8:16]))
	end = int64(binary.LittleEndian.Uint64(buf[16:24]))
	return
}

// encodeBlockNextPtr serializes a chain "next block" pointer.
func encodeBlockNextPtr(offset int64) []byte {
	buf := make([]byte, indexBlockNextPtrSize)
	binary.LittleEndian.PutUint64(buf, uint64(offset))
	return buf
}

// decodeBlockNextPtr parses a chain "next block" pointer.
func decodeBlockNextPtr(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf[:indexBlockNextPtrSize]))
}

// slotOffsetInBlock returns the file offset of slot i (0-based) within
// the block starting at blockBegin.
func slotOffsetInBlock(blockBegin int64, i int) int64 {
	return blockBegin + indexBlockNextPtrSize + int64(i)*IndexSlotSize
}
