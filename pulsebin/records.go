package pulsebin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ApertureHeader is the fixed per-aperture record preceding an aperture's
// raw record block. ByteLoc is not stored in the header itself; it is the
// absolute offset the header was read from.
type ApertureHeader struct {
	WellID    uint32
	X         float32
	Y         float32
	NumPulses uint32
	ByteLoc   uint64
}

func parseApertureHeader(b []byte, byteLoc uint64) (ApertureHeader, error) {
	if len(b) < ApertureHeaderSize {
		return ApertureHeader{}, fmt.Errorf("%w: aperture header needs %d bytes, have %d",
			ErrTruncated, ApertureHeaderSize, len(b))
	}
	return ApertureHeader{
		WellID:    binary.LittleEndian.Uint32(b[0:4]),
		X:         math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Y:         math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
		NumPulses: binary.LittleEndian.Uint32(b[12:16]),
		ByteLoc:   byteLoc,
	}, nil
}

// RawRecord is one undecoded fixed-size record slot.
type RawRecord [RecordSize]byte

// FormattedRecord is one decoded event. Intensity, background, and
// standard-deviation fields carry engineering units after fixed-point
// dequantization. LongPulseNumFrames is set only for long-pulse records,
// EventFrame only for frame-event records.
type FormattedRecord struct {
	Index           int
	RecordType      uint8
	FramesSinceLast uint16
	Duration        uint16
	Intensity0      float32
	Intensity1      float32
	Bg0             float32
	Bg1             float32
	Sd0             float32
	Sd1             float32

	LongPulseNumFrames *uint32
	EventFrame         *uint32
}

// TypeName returns the display name of the record's classification.
func (r FormattedRecord) TypeName() string {
	switch r.RecordType {
	case RecordBackground:
		return "background"
	case RecordPulse:
		return "pulse"
	case RecordLongPulse:
		return "long_pulse"
	case RecordFrameEvent:
		return "frame_event"
	default:
		return fmt.Sprintf("unknown(%d)", r.RecordType)
	}
}

// isPulseBearing reports whether the record contributes a normalized
// pulse. Background and frame-event records do not.
func (r FormattedRecord) isPulseBearing() bool {
	return r.RecordType == RecordPulse || r.RecordType == RecordLongPulse
}

// formatRecord decodes one raw record using the record-type table. Same
// raw bytes and table always yield the same result.
func formatRecord(raw RawRecord, types []RecordType, idx int) (FormattedRecord, error) {
	code := raw[0]
	rt, err := typeByCode(types, code)
	if err != nil {
		return FormattedRecord{}, fmt.Errorf("record %d: %w", idx, err)
	}

	rec := FormattedRecord{
		Index:           idx,
		RecordType:      code,
		FramesSinceLast: binary.LittleEndian.Uint16(raw[1:3]),
		Duration:        binary.LittleEndian.Uint16(raw[3:5]),
		Intensity0:      rt.dequantize(uint32(binary.LittleEndian.Uint16(raw[5:7]))),
		Intensity1:      rt.dequantize(uint32(binary.LittleEndian.Uint16(raw[7:9]))),
		Bg0:             rt.dequantize(uint32(raw[9])),
		Bg1:             rt.dequantize(uint32(raw[10])),
		Sd0:             rt.dequantize(uint32(raw[11] & 0x0f)),
		Sd1:             rt.dequantize(uint32(raw[11] >> 4)),
	}

	aux := binary.LittleEndian.Uint32(raw[12:16])
	switch code {
	case RecordLongPulse:
		rec.LongPulseNumFrames = &aux
	case RecordFrameEvent:
		rec.EventFrame = &aux
	}
	return rec, nil
}

// sliceRawRecords cuts an aperture's contiguous record block into
// fixed-size raw records.
func sliceRawRecords(b []byte, numPulses int) ([]RawRecord, error) {
	if len(b) < numPulses*RecordSize {
		return nil, fmt.Errorf("%w: record block needs %d bytes for %d records, have %d",
			ErrTruncated, numPulses*RecordSize, numPulses, len(b))
	}
	records := make([]RawRecord, numPulses)
	for i := 0; i < numPulses; i++ {
		copy(records[i][:], b[i*RecordSize:(i+1)*RecordSize])
	}
	return records, nil
}
