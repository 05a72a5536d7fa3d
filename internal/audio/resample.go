package audio

import "math"

// resampleInt16 converts interleaved samples from one sample rate to another using linear interpolation.
func resampleInt16(input []int16, fromRate, toRate, channels int) []int16 {
	if fromRate == toRate || len(input) == 0 || fromRate <= 0 || toRate <= 0 {
		return input
	}

	if channels < 1 {
		channels = 1
	}

	frames := len(input) / channels
	outFrames := int(math.Round(float64(frames) * float64(toRate) / float64(fromRate)))
	output := make([]int16, outFrames*channels)
	ratio := float64(fromRate) / float64(toRate)

	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		for c := 0; c < channels; c++ {
			a := input[idx*channels+c]
			b := a
			if idx+1 < frames {
				b = input[(idx+1)*channels+c]
			}
			output[i*channels+c] = int16(math.Round(float64(a) + frac*(float64(b)-float64(a))))
		}
	}

	return output
}

// calculateRMS16 calculates the root mean square of the audio buffer for int16 samples.
func calculateRMS16(buffer []int16) float64 {
	if len(buffer) == 0 {
		return 0
	}

	var sumSquares float64
	for _, sample := range buffer {
		val := float64(sample)
		sumSquares += val * val
	}
	meanSquares := sumSquares / float64(len(buffer))
	return math.Sqrt(meanSquares)
}
