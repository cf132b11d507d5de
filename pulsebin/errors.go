package pulsebin

import "errors"

// Structural violations of the binary contract. Any of these aborts the
// current operation; there is no degraded-mode decoding.
var (
	ErrBadMagic          = errors.New("pulsebin: file magic mismatch")
	ErrBadIndexMagic     = errors.New("pulsebin: index section magic mismatch")
	ErrTruncated         = errors.New("pulsebin: truncated file")
	ErrBadMetadata       = errors.New("pulsebin: malformed metadata")
	ErrApertureMismatch  = errors.New("pulsebin: aperture header does not match index entry")
	ErrUnknownRecordType = errors.New("pulsebin: record type code not in record-type table")
)

// Caller-facing lookup and argument errors.
var (
	ErrNotFound     = errors.New("pulsebin: aperture not found in index")
	ErrInvalidInput = errors.New("pulsebin: invalid input")
)
