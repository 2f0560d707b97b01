// Package audio provides the capture and playback plumbing used by the
// voice client. Microphones and speakers differ per platform, so both are
// modeled as small interfaces the caller injects; the package ships a few
// bundled implementations for testing and headless use.
package audio

import (
	"context"
	"time"
)

// Format describes raw audio data.
type Format struct {
	SampleRate int    // samples per second, e.g. 48000
	Channels   int    // 1 for mono
	Encoding   string // "pcm16"
}

// EncodingPCM16 is little-endian signed 16-bit PCM, the only encoding
// the client exchanges with capture sources and playback sinks.
const EncodingPCM16 = "pcm16"

// Frame is one chunk of audio with its format and capture time.
type Frame struct {
	Data      []byte
	Format    Format
	Timestamp time.Time
}

// Constraints are the capture settings a source should honor. Echo
// cancellation and noise suppression are requests; sources that cannot
// apply them deliver unprocessed audio.
type Constraints struct {
	Format           Format
	EchoCancellation bool
	NoiseSuppression bool
}

// Capture produces audio frames from an input device or other source.
type Capture interface {
	Name() string

	// Start begins capturing and returns the frame stream. The channel is
	// closed when the source is exhausted, Close is called, or ctx ends.
	Start(ctx context.Context, c Constraints) (<-chan Frame, error)

	Close() error
}

// Playback consumes audio frames and plays (or stores) them.
type Playback interface {
	Name() string

	// Play consumes frames until the channel is closed or ctx ends.
	Play(ctx context.Context, in <-chan Frame) error

	Close() error
}
