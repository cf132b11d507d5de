package pulsebin

import (
	"github.com/Quantum-Si/qsi-pulse-reader/internal/numerical"
)

// NormalizedPulse is a physically interpretable pulse event derived from
// one pulse-bearing formatted record. Frame positions are absolute within
// the aperture's record stream; seconds are derived from the file's frame
// rate.
type NormalizedPulse struct {
	Index  int
	StartF uint32
	EndF   uint32
	DurF   uint32
	DurS   float32
	IpdF   uint32
	IpdS   float32

	Snr              float32
	Intensity        float32
	Bin0Intensity    float32
	IntensityDisplay float32
	Binratio         float32

	BgMean     float32
	BgStd      float32
	Bin0BgMean float32
	Bin0BgStd  float32
}

// NormalizePulses derives the ordered pulse sequence from an aperture's
// full formatted-record sequence. Non-pulse records (background, frame
// events) advance the frame cursor but contribute no output, so the
// result is never longer than the input. Output order follows input
// order, which matches increasing start frame.
func NormalizePulses(records []FormattedRecord, fps float32) []NormalizedPulse {
	pulses := make([]NormalizedPulse, 0, len(records))

	var cursor uint32       // end frame of the previous record
	var lastPulseEnd uint32 // end frame of the previous retained pulse

	for _, rec := range records {
		startF := cursor + uint32(rec.FramesSinceLast)

		durF := uint32(rec.Duration)
		if rec.RecordType == RecordLongPulse && rec.LongPulseNumFrames != nil {
			durF = *rec.LongPulseNumFrames
		}
		endF := startF + durF
		cursor = endF

		if !rec.isPulseBearing() {
			continue
		}

		intensity := rec.Intensity0 + rec.Intensity1
		display := intensity - (rec.Bg0 + rec.Bg1)
		noise := numerical.QuadratureSum(float64(rec.Sd0), float64(rec.Sd1))

		ipdF := startF - lastPulseEnd
		lastPulseEnd = endF

		pulses = append(pulses, NormalizedPulse{
			Index:  rec.Index,
			StartF: startF,
			EndF:   endF,
			DurF:   durF,
			DurS:   float32(durF) / fps,
			IpdF:   ipdF,
			IpdS:   float32(ipdF) / fps,

			Snr:              float32(numerical.SafeRatio(float64(display), noise)),
			Intensity:        intensity,
			Bin0Intensity:    rec.Intensity0,
			IntensityDisplay: display,
			Binratio:         float32(numerical.SafeRatio(float64(rec.Intensity0), float64(intensity))),

			BgMean:     float32(numerical.ChannelMean(float64(rec.Bg0), float64(rec.Bg1))),
			BgStd:      float32(numerical.ChannelRMS(float64(rec.Sd0), float64(rec.Sd1))),
			Bin0BgMean: rec.Bg0,
			Bin0BgStd:  rec.Sd0,
		})
	}
	return pulses
}
