package fx

import "math"

// LFO waveform indices as exposed by the waveform parameter.
const (
	waveSine = iota
	waveTriangle
	waveSaw
	waveSquare
)

// lfoValue evaluates a unipolar LFO in [0, 1] at phase in [0, 1).
func lfoValue(waveform int, phase float64) float64 {
	switch waveform {
	case waveTriangle:
		return 1 - math.Abs(2*phase-1)
	case waveSaw:
		return phase
	case waveSquare:
		if phase < 0.5 {
			return 1
		}
		return 0
	default:
		return 0.5 * (1 + math.Sin(2*math.Pi*phase))
	}
}

func wrapPhase(phase float64) float64 {
	return phase - math.Floor(phase)
}
