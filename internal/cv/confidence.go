package cv

import "math"

// AttachmentConfidence saturates with the number of non-empty extracted lines.
func AttachmentConfidence(rawText string) float64 {
	return math.Min(1.0, 0.2+float64(len(Lines(rawText)))/200.0)
}

// Score combines a body bonus with the mean attachment contribution, capped at 1.
func Score(body string, contributions []float64) float64 {
	base := 0.1
	if body != "" {
		base = 0.3
	}
	boost := 0.0
	if len(contributions) > 0 {
		sum := 0.0
		for _, c := range contributions {
			sum += math.Max(0, math.Min(1, c))
		}
		boost = sum / float64(len(contributions))
	}
	return math.Min(1.0, base+boost)
}
