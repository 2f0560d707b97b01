package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// SilenceCapture emits zeroed frames at the requested format. It stands in
// for a microphone on headless hosts or in tests.
type SilenceCapture struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSilenceCapture creates a silence source.
func NewSilenceCapture() *SilenceCapture {
	return &SilenceCapture{}
}

// Name implements Capture.
func (s *SilenceCapture) Name() string { return "silence" }

// Start implements Capture.
func (s *SilenceCapture) Start(ctx context.Context, c Constraints) (<-chan Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	frames := make(chan Frame, 4)
	frameBytes := frameSizeBytes(c.Format)

	go func() {
		defer close(frames)
		ticker := time.NewTicker(FrameDuration)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame := Frame{
					Data:      make([]byte, frameBytes),
					Format:    c.Format,
					Timestamp: time.Now(),
				}
				select {
				case frames <- frame:
				default:
				}
			}
		}
	}()

	return frames, nil
}

// Close implements Capture.
func (s *SilenceCapture) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

// ReaderCapture feeds raw PCM16 from an io.Reader at real-time pace, one
// frame per FrameDuration. The frame stream closes at EOF.
type ReaderCapture struct {
	r      io.Reader
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewReaderCapture wraps a reader of raw PCM16 matching the capture
// constraints passed to Start.
func NewReaderCapture(r io.Reader) *ReaderCapture {
	return &ReaderCapture{r: r}
}

// Name implements Capture.
func (r *ReaderCapture) Name() string { return "reader" }

// Start implements Capture.
func (r *ReaderCapture) Start(ctx context.Context, c Constraints) (<-chan Frame, error) {
	if r.r == nil {
		return nil, errors.New("audio: reader capture has no reader")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	frames := make(chan Frame, 4)
	frameBytes := frameSizeBytes(c.Format)

	go func() {
		defer close(frames)
		ticker := time.NewTicker(FrameDuration)
		defer ticker.Stop()
		buf := make([]byte, frameBytes)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := io.ReadFull(r.r, buf)
				if n > 0 {
					data := make([]byte, n)
					copy(data, buf[:n])
					select {
					case frames <- Frame{Data: data, Format: c.Format, Timestamp: time.Now()}:
					case <-ctx.Done():
						return
					}
				}
				if err != nil {
					return
				}
			}
		}
	}()

	return frames, nil
}

// Close implements Capture.
func (r *ReaderCapture) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return nil
}

// frameSizeBytes returns the PCM16 byte length of one FrameDuration frame.
func frameSizeBytes(f Format) int {
	samples := f.SampleRate * int(FrameDuration.Milliseconds()) / 1000
	return samples * f.Channels * 2
}
