package pulsebin

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metadata is the structured view of the JSON blob that trails the
// record-type table. Only the fields the reader needs are decoded; the
// raw text is kept verbatim on the Reader for callers that want the rest.
type Metadata struct {
	Fps      float32
	Duration float32
	// Trimmed reports whether the upstream pulse caller ran with
	// boundary-frame trimming enabled.
	Trimmed bool
}

type metadataDoc struct {
	Fps         *float64 `json:"fps"`
	Duration    float64  `json:"duration"`
	PulseCaller struct {
		Options []string `json:"options"`
	} `json:"pulseCaller"`
}

func parseMetadata(raw []byte) (Metadata, error) {
	var doc metadataDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	if doc.Fps == nil {
		return Metadata{}, fmt.Errorf("%w: missing fps", ErrBadMetadata)
	}
	if *doc.Fps <= 0 {
		return Metadata{}, fmt.Errorf("%w: fps %v", ErrBadMetadata, *doc.Fps)
	}
	md := Metadata{
		Fps:      float32(*doc.Fps),
		Duration: float32(doc.Duration),
	}
	for _, opt := range doc.PulseCaller.Options {
		if opt == "trim_boundary_frames" {
			md.Trimmed = true
		}
	}
	return md, nil
}

// FrameDurS is the duration of one frame in seconds.
func (m Metadata) FrameDurS() float32 {
	return 1.0 / m.Fps
}

// RunDurS is the total run duration in seconds.
func (m Metadata) RunDurS() float32 {
	return m.Duration
}

// RunDurF is the total run duration in frames, rounded up.
func (m Metadata) RunDurF() uint64 {
	return uint64(math.Ceil(float64(m.Duration) * float64(m.Fps)))
}
