package pulsebin

import (
	"encoding/binary"
	"fmt"
)

// Index maps aperture identifiers to the absolute byte offset of their
// on-disk block. Built once at open time and immutable afterwards.
type Index struct {
	offsets   map[uint32]uint64
	apertures []uint32
}

// parseIndex decodes the index section body: the bytes immediately after
// the index magic, holding numReads fixed-size entries in on-disk order.
func parseIndex(b []byte, numReads int) (*Index, error) {
	if len(b) < numReads*IndexRecordSize {
		return nil, fmt.Errorf("%w: index needs %d bytes for %d entries, have %d",
			ErrTruncated, numReads*IndexRecordSize, numReads, len(b))
	}
	idx := &Index{
		offsets:   make(map[uint32]uint64, numReads),
		apertures: make([]uint32, numReads),
	}
	for i := 0; i < numReads; i++ {
		entry := b[i*IndexRecordSize : (i+1)*IndexRecordSize]
		ap := binary.LittleEndian.Uint32(entry[0:4])
		idx.apertures[i] = ap
		idx.offsets[ap] = binary.LittleEndian.Uint64(entry[4:12])
	}
	return idx, nil
}

// Lookup returns the byte offset of the given aperture's block.
func (idx *Index) Lookup(aperture uint32) (uint64, error) {
	off, ok := idx.offsets[aperture]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, aperture)
	}
	return off, nil
}

// Apertures returns the aperture identifiers in on-disk index order. The
// returned slice is shared; callers must not modify it.
func (idx *Index) Apertures() []uint32 {
	return idx.apertures
}

// Len is the number of apertures in the index.
func (idx *Index) Len() int {
	return len(idx.apertures)
}
