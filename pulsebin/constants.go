package pulsebin

// On-disk layout constants for the pulses.bin format. All multi-byte
// integers in the file are little-endian.
const (
	// FileMagic is the first 8 bytes of every pulses.bin file ("PULSEBIN").
	FileMagic uint64 = 0x4e494245534c5550

	// IndexMagic tags the start of the aperture index section ("PULSEIDX").
	IndexMagic uint64 = 0x58444945534c5550

	// FileHeaderSize is the fixed size of the file header in bytes.
	FileHeaderSize = 40

	// RecordTypeEntrySize is the size of one record-type table entry.
	RecordTypeEntrySize = 4

	// ApertureHeaderSize is the fixed size of a per-aperture header.
	ApertureHeaderSize = 16

	// RecordSize is the fixed size of one raw record slot.
	RecordSize = 16

	// IndexRecordSize is the size of one index entry: aperture id (u32)
	// plus absolute byte offset (u64).
	IndexRecordSize = 12
)

// Record type codes. The code stored in a raw record selects both the
// field classification and the dequantization rule from the record-type
// table.
const (
	RecordBackground uint8 = 0
	RecordPulse      uint8 = 1
	RecordLongPulse  uint8 = 2
	RecordFrameEvent uint8 = 3
)
