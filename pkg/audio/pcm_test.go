package audio

import (
	"reflect"
	"testing"
)

func TestInt16BytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345, -12345}
	got := BytesToInt16(Int16ToBytes(samples))
	if !reflect.DeepEqual(got, samples) {
		t.Errorf("round trip = %v, want %v", got, samples)
	}
}

func TestApplyGainScales(t *testing.T) {
	data := Int16ToBytes([]int16{1000, -1000, 32767, -32768})
	ApplyGain(data, 0.5)
	got := BytesToInt16(data)
	want := []int16{500, -500, 16383, -16384}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("gain 0.5 = %v, want %v", got, want)
	}
}

func TestApplyGainUnityLeavesDataUntouched(t *testing.T) {
	for _, gain := range []float64{1.0, 1.5} {
		data := Int16ToBytes([]int16{1000, -1000})
		ApplyGain(data, gain)
		if got := BytesToInt16(data); !reflect.DeepEqual(got, []int16{1000, -1000}) {
			t.Errorf("gain %v modified samples: %v", gain, got)
		}
	}
}

func TestApplyGainZeroSilences(t *testing.T) {
	for _, gain := range []float64{0, -0.5} {
		data := Int16ToBytes([]int16{1000, -32768, 32767})
		ApplyGain(data, gain)
		for i, s := range BytesToInt16(data) {
			if s != 0 {
				t.Errorf("gain %v sample[%d] = %d, want 0", gain, i, s)
			}
		}
	}
}

func TestResamplePassthrough(t *testing.T) {
	samples := []int16{1, 2, 3}
	if got := Resample(samples, 48000, 48000); !reflect.DeepEqual(got, samples) {
		t.Errorf("same-rate resample = %v", got)
	}
	if got := Resample(nil, 48000, 16000); len(got) != 0 {
		t.Errorf("empty input produced %v", got)
	}
}

func TestResampleDownLength(t *testing.T) {
	samples := make([]int16, 480)
	for i := range samples {
		samples[i] = 100
	}
	got := Resample(samples, 48000, 16000)
	if len(got) != 160 {
		t.Fatalf("len = %d, want 160", len(got))
	}
	for i, s := range got {
		if s != 100 {
			t.Fatalf("sample[%d] = %d, want constant 100", i, s)
		}
	}
}

func TestResampleUpLength(t *testing.T) {
	samples := make([]int16, 160)
	got := Resample(samples, 16000, 48000)
	if len(got) != 480 {
		t.Errorf("len = %d, want 480", len(got))
	}
}

func TestFrameSizeBytes(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{Format{SampleRate: 48000, Channels: 1, Encoding: EncodingPCM16}, 1920},
		{Format{SampleRate: 48000, Channels: 2, Encoding: EncodingPCM16}, 3840},
		{Format{SampleRate: 16000, Channels: 1, Encoding: EncodingPCM16}, 640},
	}
	for _, tt := range tests {
		if got := frameSizeBytes(tt.format); got != tt.want {
			t.Errorf("frameSizeBytes(%+v) = %d, want %d", tt.format, got, tt.want)
		}
	}
}
