package pulsebin

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Test fixture helpers: build byte-exact synthetic pulses.bin files.

type typeEntry struct {
	Code   uint8
	Bits   uint8
	Offset uint16
}

type testAperture struct {
	ID      uint32
	X, Y    float32
	Records []RawRecord
}

const testMetadata = `{"fps": 100.0, "duration": 2.5}`

const trimmedMetadata = `{"fps": 100.0, "duration": 2.5,` +
	` "pulseCaller": {"options": ["trim_boundary_frames"]}}`

// testTypes is the two-descriptor table from the reference decode
// scenario: a pulse type with bits=8, offset=0 and a background type with
// bits=16, offset=100, plus long-pulse and frame-event entries reusing
// the 8-bit rule.
var testTypes = []typeEntry{
	{Code: RecordPulse, Bits: 8, Offset: 0},
	{Code: RecordBackground, Bits: 16, Offset: 100},
	{Code: RecordLongPulse, Bits: 8, Offset: 0},
	{Code: RecordFrameEvent, Bits: 8, Offset: 0},
}

func makeRawRecord(code uint8, ipd, dur, i0, i1 uint16, bg0, bg1, sd0, sd1 uint8, aux uint32) RawRecord {
	var rec RawRecord
	rec[0] = code
	binary.LittleEndian.PutUint16(rec[1:3], ipd)
	binary.LittleEndian.PutUint16(rec[3:5], dur)
	binary.LittleEndian.PutUint16(rec[5:7], i0)
	binary.LittleEndian.PutUint16(rec[7:9], i1)
	rec[9] = bg0
	rec[10] = bg1
	rec[11] = (sd1 << 4) | (sd0 & 0x0f)
	binary.LittleEndian.PutUint32(rec[12:16], aux)
	return rec
}

// buildPulseFileBytes assembles a complete file image: header, type
// table, metadata, contiguous aperture blocks, index section.
func buildPulseFileBytes(types []typeEntry, metadata string, apertures []testAperture) []byte {
	dataOffset := FileHeaderSize + len(types)*RecordTypeEntrySize + len(metadata)

	var body []byte
	offsets := make([]uint64, len(apertures))
	offset := uint64(dataOffset)
	for i, ap := range apertures {
		offsets[i] = offset
		hdr := make([]byte, ApertureHeaderSize)
		binary.LittleEndian.PutUint32(hdr[0:4], ap.ID)
		binary.LittleEndian.PutUint32(hdr[4:8], math.Float32bits(ap.X))
		binary.LittleEndian.PutUint32(hdr[8:12], math.Float32bits(ap.Y))
		binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(ap.Records)))
		body = append(body, hdr...)
		for _, rec := range ap.Records {
			body = append(body, rec[:]...)
		}
		offset += uint64(ApertureHeaderSize + len(ap.Records)*RecordSize)
	}
	indexOffset := offset

	header := make([]byte, FileHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], FileMagic)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(types)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(metadata)))
	binary.LittleEndian.PutUint64(header[16:24], indexOffset)
	binary.LittleEndian.PutUint64(header[24:32], uint64(dataOffset))
	binary.LittleEndian.PutUint64(header[32:40], uint64(len(apertures)))

	file := header
	for _, te := range types {
		entry := make([]byte, RecordTypeEntrySize)
		entry[0] = te.Code
		entry[1] = te.Bits
		binary.LittleEndian.PutUint16(entry[2:4], te.Offset)
		file = append(file, entry...)
	}
	file = append(file, []byte(metadata)...)
	file = append(file, body...)

	indexMagic := make([]byte, 8)
	binary.LittleEndian.PutUint64(indexMagic, IndexMagic)
	file = append(file, indexMagic...)
	for i, ap := range apertures {
		entry := make([]byte, IndexRecordSize)
		binary.LittleEndian.PutUint32(entry[0:4], ap.ID)
		binary.LittleEndian.PutUint64(entry[4:12], offsets[i])
		file = append(file, entry...)
	}
	return file
}

func writePulseFile(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulses.bin")
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}
	return path
}

// threeApertureFixture is the reference scenario: apertures {10, 20, 30},
// two records each.
func threeApertureFixture() []testAperture {
	return []testAperture{
		{
			ID: 10, X: 1.0, Y: 2.0,
			Records: []RawRecord{
				makeRawRecord(RecordPulse, 5, 10, 512, 256, 128, 64, 4, 8, 0),
				makeRawRecord(RecordBackground, 2, 3, 1000, 2000, 50, 60, 3, 5, 0),
			},
		},
		{
			ID: 20, X: 3.5, Y: 4.5,
			Records: []RawRecord{
				makeRawRecord(RecordPulse, 5, 10, 512, 256, 128, 64, 4, 8, 0),
				makeRawRecord(RecordPulse, 4, 6, 768, 512, 32, 16, 2, 2, 0),
			},
		},
		{
			ID: 30, X: 6.0, Y: 7.0,
			Records: []RawRecord{
				makeRawRecord(RecordBackground, 1, 1, 100, 200, 10, 20, 1, 1, 0),
				makeRawRecord(RecordLongPulse, 3, 0, 512, 512, 8, 8, 2, 2, 70000),
			},
		},
	}
}

func openFixture(t *testing.T, apertures []testAperture) *Reader {
	t.Helper()
	path := writePulseFile(t, buildPulseFileBytes(testTypes, testMetadata, apertures))
	r, err := Open(path)
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}
