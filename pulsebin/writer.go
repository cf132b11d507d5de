package pulsebin

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

// writerBufferSize is the destination write buffer, matching the read
// granularity of large subset copies.
const writerBufferSize = 1024 * 1024

// CopyAperturesToNewFile writes a new structurally valid pulses.bin file
// containing only the requested apertures. Each aperture's on-disk byte
// span is copied verbatim as an opaque block; records are never
// re-decoded, so unknown or forward-compatible record content survives
// the copy. The new file gets a fresh header (updated read count and
// index offset) and a freshly computed index; the record-type table and
// metadata blob are copied unchanged.
//
// The requested identifiers may be unsorted; duplicates and empty
// selections are rejected with ErrInvalidInput and unknown identifiers
// with ErrNotFound, in both cases before the destination file is created.
// The copy is not transactional: a failure mid-write leaves a partial
// destination file behind.
func (r *Reader) CopyAperturesToNewFile(apertures []uint32, fileName string) error {
	if len(apertures) == 0 {
		return fmt.Errorf("%w: empty aperture selection", ErrInvalidInput)
	}

	// The index layout requires apertures in ascending identifier order,
	// matching the data section's on-disk order.
	sorted := make([]uint32, len(apertures))
	copy(sorted, apertures)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return fmt.Errorf("%w: duplicate aperture %d", ErrInvalidInput, sorted[i])
		}
	}

	// Resolve every aperture's current span before touching the
	// destination path, so lookup failures leave no file behind. New
	// offsets accumulate contiguously from the original data offset.
	offset := r.Header.DataOffset
	newByteLoc := make([]uint64, len(sorted))
	byteLen := make([]int, len(sorted))
	srcByteLoc := make([]uint64, len(sorted))
	headerBuffer := make([]byte, ApertureHeaderSize)

	for i, ap := range sorted {
		byteLoc, err := r.index.Lookup(ap)
		if err != nil {
			return err
		}
		if err := readExactAt(r.file, headerBuffer, int64(byteLoc)); err != nil {
			return fmt.Errorf("error reading aperture %d header: %w", ap, err)
		}
		apertureHeader, err := parseApertureHeader(headerBuffer, byteLoc)
		if err != nil {
			return err
		}
		if apertureHeader.WellID != ap {
			return fmt.Errorf("%w: requested %d, header holds %d", ErrApertureMismatch, ap, apertureHeader.WellID)
		}

		srcByteLoc[i] = byteLoc
		newByteLoc[i] = offset
		byteLen[i] = ApertureHeaderSize + int(apertureHeader.NumPulses)*RecordSize
		offset += uint64(byteLen[i])
	}

	dest, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	defer dest.Close()
	w := bufio.NewWriterSize(dest, writerBufferSize)

	// New header: identical to the source except for the read count and
	// the index offset at the end of the last copied span.
	newHeader := r.Header
	newHeader.NumReads = uint64(len(sorted))
	newHeader.IndexOffset = offset
	if err := binary.Write(w, binary.LittleEndian, newHeader); err != nil {
		return fmt.Errorf("error writing file header: %w", err)
	}

	// Copy the record-type table and metadata blob verbatim.
	preamble := make([]byte, r.Header.DataOffset-FileHeaderSize)
	if err := readExactAt(r.file, preamble, FileHeaderSize); err != nil {
		return fmt.Errorf("error reading source preamble: %w", err)
	}
	if _, err := w.Write(preamble); err != nil {
		return fmt.Errorf("error writing preamble: %w", err)
	}

	// Copy each aperture's span through a scratch buffer sized to the
	// largest selected span, keeping peak memory bounded per aperture
	// rather than per file.
	maxByteLen := 0
	for _, l := range byteLen {
		if l > maxByteLen {
			maxByteLen = l
		}
	}
	scratch := make([]byte, maxByteLen)
	for i := range sorted {
		span := scratch[:byteLen[i]]
		if err := readExactAt(r.file, span, int64(srcByteLoc[i])); err != nil {
			return fmt.Errorf("error reading aperture %d span: %w", sorted[i], err)
		}
		if _, err := w.Write(span); err != nil {
			return fmt.Errorf("error writing aperture %d span: %w", sorted[i], err)
		}
	}

	// Write the index section: magic tag, then one entry per aperture in
	// the same sorted order as the copied spans.
	if err := binary.Write(w, binary.LittleEndian, IndexMagic); err != nil {
		return fmt.Errorf("error writing index magic: %w", err)
	}
	for i, ap := range sorted {
		if err := binary.Write(w, binary.LittleEndian, ap); err != nil {
			return fmt.Errorf("error writing index entry: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, newByteLoc[i]); err != nil {
			return fmt.Errorf("error writing index entry: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error flushing destination file: %w", err)
	}
	return dest.Close()
}
