package pulsebin

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FileHeader is the fixed 40-byte structure at the start of every
// pulses.bin file. Field order matches the on-disk layout so the struct
// can be read and written directly with encoding/binary.
type FileHeader struct {
	Magic              uint64
	NumEncodingRecords uint32
	MetadataLength     uint32
	IndexOffset        uint64
	DataOffset         uint64
	NumReads           uint64
}

func parseFileHeader(b []byte) (FileHeader, error) {
	var hdr FileHeader
	if len(b) < FileHeaderSize {
		return hdr, fmt.Errorf("%w: file header needs %d bytes, have %d", ErrTruncated, FileHeaderSize, len(b))
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &hdr); err != nil {
		return hdr, fmt.Errorf("error reading file header: %w", err)
	}
	return hdr, nil
}

// Validate checks the magic value and the internal offset ordering against
// the actual file size.
func (h FileHeader) Validate(fileSize int64) error {
	if h.Magic != FileMagic {
		return fmt.Errorf("%w: got 0x%016x", ErrBadMagic, h.Magic)
	}
	if h.DataOffset < FileHeaderSize || h.DataOffset >= h.IndexOffset || h.IndexOffset > uint64(fileSize) {
		return fmt.Errorf("%w: data offset %d, index offset %d, file size %d",
			ErrTruncated, h.DataOffset, h.IndexOffset, fileSize)
	}
	// The record-type table and metadata sit between the header and the
	// data section, so their declared sizes must fit in that gap.
	sectionsEnd := uint64(FileHeaderSize) +
		uint64(h.NumEncodingRecords)*RecordTypeEntrySize +
		uint64(h.MetadataLength)
	if sectionsEnd > h.DataOffset {
		return fmt.Errorf("%w: %d record types and %d metadata bytes exceed data offset %d",
			ErrTruncated, h.NumEncodingRecords, h.MetadataLength, h.DataOffset)
	}
	// The index section holds its magic plus one entry per read. The
	// division keeps the comparison safe for arbitrary num_reads values.
	indexBytes := uint64(fileSize) - h.IndexOffset
	if indexBytes < 8 || h.NumReads > (indexBytes-8)/IndexRecordSize {
		return fmt.Errorf("%w: index section of %d bytes cannot hold %d reads",
			ErrTruncated, indexBytes, h.NumReads)
	}
	return nil
}

// RecordType is one entry of the record-type table: the decode rule for
// every raw record carrying its type code. Scale is derived from the
// stored bit width as 1<<bits.
type RecordType struct {
	Type   uint8
	Bits   uint8
	Scale  float32
	Offset float32
}

// dequantize converts a packed integer field to its physical value using
// this type's fixed-point rule.
func (rt RecordType) dequantize(raw uint32) float32 {
	return float32(raw)/rt.Scale + rt.Offset
}

func parseRecordTypes(b []byte, n int) ([]RecordType, error) {
	if len(b) < n*RecordTypeEntrySize {
		return nil, fmt.Errorf("%w: record-type table needs %d bytes, have %d",
			ErrTruncated, n*RecordTypeEntrySize, len(b))
	}
	types := make([]RecordType, n)
	for i := 0; i < n; i++ {
		entry := b[i*RecordTypeEntrySize : (i+1)*RecordTypeEntrySize]
		bits := entry[1]
		types[i] = RecordType{
			Type:   entry[0],
			Bits:   bits,
			Scale:  float32(uint32(1) << bits),
			Offset: float32(binary.LittleEndian.Uint16(entry[2:4])),
		}
	}
	return types, nil
}

// typeByCode finds the table entry for a raw record's embedded type code.
func typeByCode(types []RecordType, code uint8) (RecordType, error) {
	for _, rt := range types {
		if rt.Type == code {
			return rt, nil
		}
	}
	return RecordType{}, fmt.Errorf("%w: code %d", ErrUnknownRecordType, code)
}
