package pulsebin

// PulseFilter accepts or rejects normalized pulses by criteria outside
// this package. Implementations must preserve order and must only remove
// pulses, never synthesize or reorder them.
type PulseFilter interface {
	FilterPulses(pulses []NormalizedPulse, fps float32) ([]NormalizedPulse, error)
}

// PulseFilterFunc adapts a plain function to the PulseFilter interface.
type PulseFilterFunc func(pulses []NormalizedPulse, fps float32) ([]NormalizedPulse, error)

func (f PulseFilterFunc) FilterPulses(pulses []NormalizedPulse, fps float32) ([]NormalizedPulse, error) {
	return f(pulses, fps)
}
