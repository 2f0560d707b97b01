package audio

import (
	"encoding/binary"
	"math"
)

// BytesToInt16 converts little-endian PCM16 bytes to int16 samples.
func BytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// Int16ToBytes converts int16 samples to little-endian PCM16 bytes.
func Int16ToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// ApplyGain scales PCM16 samples in place by gain. Gain is clamped to
// [0, 1] and samples saturate at the int16 range.
func ApplyGain(data []byte, gain float64) {
	if gain >= 1.0 {
		return
	}
	if gain < 0 {
		gain = 0
	}
	for i := 0; i+1 < len(data); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(data[i:])))
		s *= gain
		if s > math.MaxInt16 {
			s = math.MaxInt16
		} else if s < math.MinInt16 {
			s = math.MinInt16
		}
		binary.LittleEndian.PutUint16(data[i:], uint16(int16(s)))
	}
}

// Resample resamples audio from srcRate to dstRate using linear
// interpolation.
func Resample(samples []int16, srcRate, dstRate int) []int16 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(dstRate) / float64(srcRate)
	newLen := int(float64(len(samples)) * ratio)
	result := make([]int16, newLen)

	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) / ratio
		idx := int(srcIdx)
		if idx >= len(samples)-1 {
			result[i] = samples[len(samples)-1]
		} else {
			frac := srcIdx - float64(idx)
			result[i] = int16(float64(samples[idx])*(1-frac) + float64(samples[idx+1])*frac)
		}
	}

	return result
}
