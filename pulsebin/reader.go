package pulsebin

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Reader provides random access to the apertures of one pulses.bin file.
//
// Every read is an explicit (offset, length) ReadAt against the Reader's
// own file handle, so a Reader holds no cursor state and concurrent
// queries from multiple goroutines are safe without external locking.
// The header, record-type table, metadata, and index are parsed once at
// open time and immutable afterwards.
type Reader struct {
	FileName    string
	Header      FileHeader
	RecordTypes []RecordType
	RawMetadata string
	Metadata    Metadata
	Fps         float32
	Trimmed     bool

	file  *os.File
	index *Index
}

// Open opens a pulses.bin file and parses its header, record-type table,
// metadata, and aperture index. On any failure the file handle is closed
// and no Reader is returned.
func Open(fileName string) (*Reader, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("error opening pulse file: %w", err)
	}

	r, err := newReader(file, fileName)
	if err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func newReader(file *os.File, fileName string) (*Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("error reading pulse file size: %w", err)
	}
	fileSize := info.Size()

	// Parse and validate the file header
	headerBuffer := make([]byte, FileHeaderSize)
	if err := readExactAt(file, headerBuffer, 0); err != nil {
		return nil, fmt.Errorf("error reading file header: %w", err)
	}
	header, err := parseFileHeader(headerBuffer)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(fileSize); err != nil {
		return nil, err
	}

	// Parse the record-type table
	numTypes := int(header.NumEncodingRecords)
	typeBuffer := make([]byte, numTypes*RecordTypeEntrySize)
	if err := readExactAt(file, typeBuffer, FileHeaderSize); err != nil {
		return nil, fmt.Errorf("error reading record-type table: %w", err)
	}
	recordTypes, err := parseRecordTypes(typeBuffer, numTypes)
	if err != nil {
		return nil, err
	}

	// Parse the metadata blob
	metadataBuffer := make([]byte, header.MetadataLength)
	metadataOffset := int64(FileHeaderSize + numTypes*RecordTypeEntrySize)
	if err := readExactAt(file, metadataBuffer, metadataOffset); err != nil {
		return nil, fmt.Errorf("error reading metadata: %w", err)
	}
	metadata, err := parseMetadata(metadataBuffer)
	if err != nil {
		return nil, err
	}

	// Parse the aperture index
	indexBuffer := make([]byte, 8+int(header.NumReads)*IndexRecordSize)
	if err := readExactAt(file, indexBuffer, int64(header.IndexOffset)); err != nil {
		return nil, fmt.Errorf("error reading aperture index: %w", err)
	}
	if magic := binary.LittleEndian.Uint64(indexBuffer[0:8]); magic != IndexMagic {
		return nil, fmt.Errorf("%w: got 0x%016x", ErrBadIndexMagic, magic)
	}
	index, err := parseIndex(indexBuffer[8:], int(header.NumReads))
	if err != nil {
		return nil, err
	}

	return &Reader{
		FileName:    fileName,
		Header:      header,
		RecordTypes: recordTypes,
		RawMetadata: string(metadataBuffer),
		Metadata:    metadata,
		Fps:         metadata.Fps,
		Trimmed:     metadata.Trimmed,
		file:        file,
		index:       index,
	}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Apertures returns the aperture identifiers present in the file, in
// on-disk index order.
func (r *Reader) Apertures() []uint32 {
	return r.index.Apertures()
}

// NumReads is the number of apertures in the file.
func (r *Reader) NumReads() int {
	return r.index.Len()
}

// getRawRecords reads one aperture's header and its undecoded record
// block. The header is read fresh on every call; nothing is cached.
func (r *Reader) getRawRecords(aperture uint32) ([]RawRecord, ApertureHeader, error) {
	byteLoc, err := r.index.Lookup(aperture)
	if err != nil {
		return nil, ApertureHeader{}, err
	}

	headerBuffer := make([]byte, ApertureHeaderSize)
	if err := readExactAt(r.file, headerBuffer, int64(byteLoc)); err != nil {
		return nil, ApertureHeader{}, fmt.Errorf("error reading aperture %d header: %w", aperture, err)
	}
	apertureHeader, err := parseApertureHeader(headerBuffer, byteLoc)
	if err != nil {
		return nil, ApertureHeader{}, err
	}
	if apertureHeader.WellID != aperture {
		return nil, ApertureHeader{}, fmt.Errorf("%w: requested %d, header holds %d",
			ErrApertureMismatch, aperture, apertureHeader.WellID)
	}

	recordBuffer := make([]byte, int(apertureHeader.NumPulses)*RecordSize)
	if err := readExactAt(r.file, recordBuffer, int64(byteLoc)+ApertureHeaderSize); err != nil {
		return nil, ApertureHeader{}, fmt.Errorf("error reading aperture %d records: %w", aperture, err)
	}
	rawRecords, err := sliceRawRecords(recordBuffer, int(apertureHeader.NumPulses))
	if err != nil {
		return nil, ApertureHeader{}, err
	}
	return rawRecords, apertureHeader, nil
}

// GetAllRecords decodes every record of the given aperture, including
// non-pulse records such as background records.
func (r *Reader) GetAllRecords(aperture uint32) ([]FormattedRecord, ApertureHeader, error) {
	rawRecords, apertureHeader, err := r.getRawRecords(aperture)
	if err != nil {
		return nil, ApertureHeader{}, err
	}
	records := make([]FormattedRecord, len(rawRecords))
	for idx, raw := range rawRecords {
		records[idx], err = formatRecord(raw, r.RecordTypes, idx)
		if err != nil {
			return nil, ApertureHeader{}, fmt.Errorf("aperture %d: %w", aperture, err)
		}
	}
	return records, apertureHeader, nil
}

// GetPulses derives the normalized pulse sequence for the given aperture.
// Non-pulse records are dropped, so the result may be shorter than the
// aperture's record count. A nil filter applies no filtering.
func (r *Reader) GetPulses(aperture uint32, filter PulseFilter) ([]NormalizedPulse, ApertureHeader, error) {
	records, apertureHeader, err := r.GetAllRecords(aperture)
	if err != nil {
		return nil, ApertureHeader{}, err
	}
	pulses := NormalizePulses(records, r.Fps)
	if filter != nil {
		pulses, err = filter.FilterPulses(pulses, r.Fps)
		if err != nil {
			return nil, ApertureHeader{}, fmt.Errorf("pulse filter: %w", err)
		}
	}
	return pulses, apertureHeader, nil
}

// readExactAt fills buf from the given absolute offset, mapping any short
// read to ErrTruncated.
func readExactAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: %d bytes at offset %d, got %d", ErrTruncated, len(buf), off, n)
	}
	return fmt.Errorf("read of %d bytes at offset %d: %w", len(buf), off, err)
}
