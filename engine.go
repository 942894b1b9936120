// Engine lifecycle and the public CRUD surface.
//
// Engine is the coordinator: it owns the next-id counter, the id→Index
// map, the FreeSpaceMap, the IndexSlotPool, and the FileIO, and
// implements Open/Initialize/Reserve/Write/Read/Free/Update/Close/
// Compact. It holds no internal mutex — see package safe for an opt-in
// coarse-lock decorator — so at most one logical operation may be in
// flight against an Engine at a time.
package cellar

import (
	"bytes"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Engine states: Uninitialized -> Open -> Closed. Public operations are
// only valid in the Open state.
const (
	engineUninitialized = iota
	engineOpen
	engineClosed
)

// Engine is one open connection to a single data file.
type Engine struct {
	config Config
	fio    *fileIO
	lock   *fileLock

	free  *freeSpaceMap
	slots *indexSlotPool
	ids   map[uint64]Index

	nextID               uint64
	lastIndexBlockBegin  int64
	fileSize             int64
	state                int
}

// Open opens or creates the data file described by config and rebuilds
// every in-memory structure by scanning it.
func Open(config Config) (*Engine, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	var lock *fileLock
	if config.AdvisoryLock {
		lock, err = acquireFileLock(config.FilePath + ".lock")
		if err != nil {
			return nil, err
		}
	}

	if _, statErr := os.Stat(config.FilePath); os.IsNotExist(statErr) {
		if err := createDataFile(config); err != nil {
			_ = lock.release()
			return nil, err
		}
	}

	f, err := os.OpenFile(config.FilePath, os.O_RDWR, 0o644)
	if err != nil {
		_ = lock.release()
		return nil, fmt.Errorf("cellar: open data file: %w", err)
	}

	e := &Engine{
		config: config,
		fio:    newFileIO(f, config.ScratchBufferSize),
		lock:   lock,
		free:   newFreeSpaceMap(),
		slots:  newIndexSlotPool(),
		ids:    make(map[uint64]Index),
		state:  engineUninitialized,
	}

	if err := e.initialize(); err != nil {
		f.Close()
		_ = lock.release()
		return nil, err
	}
	e.state = engineOpen
	return e, nil
}

// createDataFile writes a brand-new file: NEXT_ID := config.StartID and a
// single zeroed index block, sized to at least config.MinFileSize. The
// write is atomic (rename-into-place via natefinch/atomic) so a
// concurrent opener never observes a half-written file, and the
// containing directory is fsynced afterward so the file's existence is
// durable before any further writes land.
func createDataFile(config Config) error {
	initial := make([]byte, config.MinFileSize)
	copy(initial[:nextIDSize], putNextID(config.StartID))
	// The index block immediately following NEXT_ID is already
	// all-zero: next-pointer 0 (end of chain) and 100 free slots
	// (id == 0).

	if err := atomic.WriteFile(config.FilePath, bytes.NewReader(initial)); err != nil {
		return fmt.Errorf("cellar: create data file: %w", err)
	}

	dir, err := os.Open(filepath.Dir(config.FilePath))
	if err != nil {
		return fmt.Errorf("cellar: open data directory: %w", err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		return fmt.Errorf("cellar: fsync data directory: %w", err)
	}
	return nil
}

// initialize rebuilds the FreeSpaceMap, IndexSlotPool, and IdIndex by
// walking the file from NEXT_ID through the index-block chain.
func (e *Engine) initialize() error {
	e.fio.seek(0)
	nextIDBuf, err := e.fio.readExactly(nextIDSize)
	if err != nil {
		return fmt.Errorf("%w: read NEXT_ID: %v", ErrCorruption, err)
	}
	nextID := readNextID(nextIDBuf)

	sz, err := e.fio.size()
	if err != nil {
		return err
	}
	if sz < minFileSize0 {
		return fmt.Errorf("%w: file shorter than one index block", ErrCorruption)
	}

	e.free.add(Interval{Begin: indexBlock0Offset, End: sz})

	blockBegin := int64(indexBlock0Offset)
	var maxLiveID uint64

	for {
		blockEnd := blockBegin + IndexBlockSize
		if blockBegin < indexBlock0Offset || blockEnd > sz {
			return fmt.Errorf("%w: index block at %d falls outside file", ErrCorruption, blockBegin)
		}
		if err := e.free.reserve(Interval{Begin: blockBegin, End: blockEnd}); err != nil {
			return fmt.Errorf("%w: index block at %d overlaps a payload", ErrCorruption, blockBegin)
		}

		e.fio.seek(blockBegin)
		nextPtrBuf, err := e.fio.readExactly(indexBlockNextPtrSize)
		if err != nil {
			return fmt.Errorf("%w: read block pointer: %v", ErrCorruption, err)
		}
		nextBlock := decodeBlockNextPtr(nextPtrBuf)

		for i := 0; i < IndicesPerBlock; i++ {
			slotOff := slotOffsetInBlock(blockBegin, i)
			e.fio.seek(slotOff)
			slotBuf, err := e.fio.readExactly(IndexSlotSize)
			if err != nil {
				return fmt.Errorf("%w: read slot: %v", ErrCorruption, err)
			}
			id, begin, end := decodeSlot(slotBuf)

			if id == 0 {
				e.slots.push(slotOff)
				continue
			}
			if begin < 0 || end < begin || end > sz {
				return fmt.Errorf("%w: slot %d has an invalid payload interval", ErrCorruption, id)
			}
			if _, dup := e.ids[id]; dup {
				return fmt.Errorf("%w: duplicate id %d", ErrCorruption, id)
			}
			if err := e.free.reserve(Interval{Begin: begin, End: end}); err != nil {
				return fmt.Errorf("%w: id %d's payload overlaps another", ErrCorruption, id)
			}
			e.ids[id] = Index{ID: id, DataBegin: begin, DataEnd: end, SlotOffset: slotOff}
			if id > maxLiveID {
				maxLiveID = id
			}
		}

		if nextBlock == 0 {
			e.lastIndexBlockBegin = blockBegin
			break
		}
		blockBegin = nextBlock
	}

	if nextID <= maxLiveID {
		return fmt.Errorf("%w: NEXT_ID %d does not exceed live id %d", ErrCorruption, nextID, maxLiveID)
	}

	e.nextID = nextID
	e.fileSize = sz
	return nil
}

// checkOpen returns ErrClosed if the engine is not in the Open state.
func (e *Engine) checkOpen() error {
	if e.state != engineOpen {
		return ErrClosed
	}
	return nil
}

// mintID returns the current NEXT_ID, persists the incremented value,
// and fsyncs before the in-memory counter advances.
func (e *Engine) mintID() (uint64, error) {
	id := e.nextID
	if id < MinID || id > MaxID {
		return 0, ErrIDExhausted
	}
	e.fio.seek(0)
	if err := e.fio.writeAllFrom(putNextID(id + 1)); err != nil {
		return 0, err
	}
	e.nextID = id + 1
	return id, nil
}

// acquireFree returns a free interval of at least size bytes, growing
// the file by max(size, GrowthQuantum) if the free map cannot satisfy
// the request.
func (e *Engine) acquireFree(size int64) (Interval, error) {
	if iv, ok := e.free.take(size); ok {
		return iv, nil
	}

	grow := size
	if e.config.GrowthQuantum > grow {
		grow = e.config.GrowthQuantum
	}
	oldSize := e.fileSize
	newSize := oldSize + grow
	if err := e.fio.growTo(newSize); err != nil {
		return Interval{}, err
	}
	e.fileSize = newSize
	e.free.add(Interval{Begin: oldSize, End: newSize})

	iv, ok := e.free.take(size)
	if !ok {
		return Interval{}, fmt.Errorf("%w: grew file but still could not satisfy allocation of %d bytes", ErrPreconditionViolated, size)
	}
	return iv, nil
}

// acquireSlot returns a free index-slot offset, growing the index-block
// chain by one block if the pool is empty.
func (e *Engine) acquireSlot() (int64, error) {
	if off, ok := e.slots.pop(); ok {
		return off, nil
	}

	blockIv, err := e.acquireFree(IndexBlockSize)
	if err != nil {
		return 0, err
	}
	if blockIv.Length() > IndexBlockSize {
		tail := Interval{Begin: blockIv.Begin + IndexBlockSize, End: blockIv.End}
		e.free.add(tail)
		blockIv = Interval{Begin: blockIv.Begin, End: blockIv.Begin + IndexBlockSize}
	}

	e.fio.seek(e.lastIndexBlockBegin)
	if err := e.fio.writeAllFrom(encodeBlockNextPtr(blockIv.Begin)); err != nil {
		return 0, err
	}

	e.fio.seek(blockIv.Begin)
	if err := e.fio.writeAllFrom(make([]byte, IndexBlockSize)); err != nil {
		return 0, err
	}

	e.lastIndexBlockBegin = blockIv.Begin
	for i := 0; i < IndicesPerBlock; i++ {
		e.slots.push(slotOffsetInBlock(blockIv.Begin, i))
	}

	off, ok := e.slots.pop()
	if !ok {
		return 0, fmt.Errorf("%w: grew the index chain but the new block yielded no slots", ErrPreconditionViolated)
	}
	return off, nil
}

// Reserve allocates a payload interval and index slot for a fresh id and
// returns the new Index. NEXT_ID is persisted and incremented as part of
// minting the id.
func (e *Engine) Reserve(dataLength int64) (Index, error) {
	if err := e.checkOpen(); err != nil {
		return Index{}, err
	}
	if dataLength < 0 {
		return Index{}, fmt.Errorf("%w: negative data length", ErrPreconditionViolated)
	}

	iv, err := e.acquireFree(dataLength)
	if err != nil {
		return Index{}, err
	}
	if iv.Length() > dataLength {
		tail := Interval{Begin: iv.Begin + dataLength, End: iv.End}
		e.free.add(tail)
		iv = Interval{Begin: iv.Begin, End: iv.Begin + dataLength}
	}

	slotOff, err := e.acquireSlot()
	if err != nil {
		e.free.add(iv)
		return Index{}, err
	}

	// iv and slotOff are borrowed from the free map and slot pool but not
	// yet durable: if minting the id or writing the slot fails below,
	// both are returned so in-memory state stays consistent with what is
	// actually on disk.
	id, err := e.mintID()
	if err != nil {
		e.free.add(iv)
		e.slots.push(slotOff)
		return Index{}, err
	}

	e.fio.seek(slotOff)
	if err := e.fio.writeAllFrom(encodeSlot(id, iv.Begin, iv.End)); err != nil {
		e.free.add(iv)
		e.slots.push(slotOff)
		return Index{}, err
	}

	idx := Index{ID: id, DataBegin: iv.Begin, DataEnd: iv.End, SlotOffset: slotOff}
	e.ids[id] = idx
	return idx, nil
}

// reserveFor behaves like Reserve but reuses id instead of minting a new
// one; used by Update to relocate an existing id's payload.
func (e *Engine) reserveFor(id uint64, dataLength int64) (Index, error) {
	iv, err := e.acquireFree(dataLength)
	if err != nil {
		return Index{}, err
	}
	if iv.Length() > dataLength {
		tail := Interval{Begin: iv.Begin + dataLength, End: iv.End}
		e.free.add(tail)
		iv = Interval{Begin: iv.Begin, End: iv.Begin + dataLength}
	}

	slotOff, err := e.acquireSlot()
	if err != nil {
		e.free.add(iv)
		return Index{}, err
	}

	// Same borrow-then-return-on-failure discipline as Reserve: iv and
	// slotOff are not committed to the id index until the slot write
	// below durably succeeds.
	e.fio.seek(slotOff)
	if err := e.fio.writeAllFrom(encodeSlot(id, iv.Begin, iv.End)); err != nil {
		e.free.add(iv)
		e.slots.push(slotOff)
		return Index{}, err
	}

	idx := Index{ID: id, DataBegin: iv.Begin, DataEnd: iv.End, SlotOffset: slotOff}
	e.ids[id] = idx
	return idx, nil
}

// Write stores bytes at idx's payload interval. len(bytes) must equal
// idx.DataEnd - idx.DataBegin.
func (e *Engine) Write(idx Index, data []byte) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if int64(len(data)) != idx.DataEnd-idx.DataBegin {
		return fmt.Errorf("%w: data length %d does not match interval length %d", ErrPreconditionViolated, len(data), idx.DataEnd-idx.DataBegin)
	}
	e.fio.seek(idx.DataBegin)
	return e.fio.writeAllFrom(data)
}

// Read returns the bytes stored at idx's payload interval.
func (e *Engine) Read(idx Index) ([]byte, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	e.fio.seek(idx.DataBegin)
	return e.fio.readExactly(idx.DataEnd - idx.DataBegin)
}

// Free returns idx's payload interval to the free map, zeroes its slot's
// id field on disk, and removes it from the id index.
func (e *Engine) Free(idx Index) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	e.fio.seek(idx.SlotOffset)
	if err := e.fio.writeAllFrom(make([]byte, 8)); err != nil {
		return err
	}

	e.free.add(idx.Payload())
	delete(e.ids, idx.ID)
	e.slots.push(idx.SlotOffset)
	return nil
}

// Store reserves space for data, writes it, and returns the new id.
func (e *Engine) Store(data []byte) (uint64, error) {
	idx, err := e.Reserve(int64(len(data)))
	if err != nil {
		return 0, err
	}
	if err := e.Write(idx, data); err != nil {
		return 0, err
	}
	return idx.ID, nil
}

// ReadID looks up id's Index and returns its payload bytes.
func (e *Engine) ReadID(id uint64) ([]byte, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	idx, ok := e.ids[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Read(idx)
}

// Update replaces id's content with data. The old interval is always
// freed and a new one reserved, which may relocate the payload; the
// slot's id field is reused so id itself never changes.
func (e *Engine) Update(id uint64, data []byte) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	old, ok := e.ids[id]
	if !ok {
		return ErrNotFound
	}
	if err := e.Free(old); err != nil {
		return err
	}
	newIdx, err := e.reserveFor(id, int64(len(data)))
	if err != nil {
		return err
	}
	return e.Write(newIdx, data)
}

// Delete removes id, returning its space to the free map and slot pool.
func (e *Engine) Delete(id uint64) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	idx, ok := e.ids[id]
	if !ok {
		return ErrNotFound
	}
	return e.Free(idx)
}

// Contains reports whether id currently names a live object.
func (e *Engine) Contains(id uint64) bool {
	if e.checkOpen() != nil {
		return false
	}
	_, ok := e.ids[id]
	return ok
}

// Size returns the number of live ids.
func (e *Engine) Size() int {
	return len(e.ids)
}

// IDs returns a lazy iterator over a snapshot of the live id set taken
// at call time. Mutations made after IDs returns are not reflected in
// the iteration.
func (e *Engine) IDs() iter.Seq[uint64] {
	snapshot := make([]uint64, 0, len(e.ids))
	for id := range e.ids {
		snapshot = append(snapshot, id)
	}
	return func(yield func(uint64) bool) {
		for _, id := range snapshot {
			if !yield(id) {
				return
			}
		}
	}
}

// Close fsyncs and releases the file handle. After Close, every public
// operation fails with ErrClosed.
func (e *Engine) Close() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.state = engineClosed

	syncErr := e.fio.sync()
	closeErr := e.fio.f.Close()
	lockErr := e.lock.release()

	if syncErr != nil {
		return syncErr
	}
	if closeErr != nil {
		return fmt.Errorf("cellar: close data file: %w", closeErr)
	}
	return lockErr
}

// Compact reorganizes the free-space map into its coalesced form and
// truncates any free tail off the end of the file. It never relocates
// live payloads.
func (e *Engine) Compact() error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.free.mergeAll()

	sz, err := e.fio.size()
	if err != nil {
		return err
	}
	newEnd := e.free.trimTail(sz)
	if newEnd == sz {
		return nil
	}
	if err := e.fio.truncate(newEnd); err != nil {
		return err
	}
	e.fileSize = newEnd
	return nil
}
