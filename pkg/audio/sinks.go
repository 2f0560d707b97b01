package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// DiscardSink drops every frame. Useful when only transcripts matter.
type DiscardSink struct{}

// NewDiscardSink creates a sink that ignores all audio.
func NewDiscardSink() *DiscardSink { return &DiscardSink{} }

// Name implements Playback.
func (d *DiscardSink) Name() string { return "discard" }

// Play implements Playback.
func (d *DiscardSink) Play(ctx context.Context, in <-chan Frame) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-in:
			if !ok {
				return nil
			}
		}
	}
}

// Close implements Playback.
func (d *DiscardSink) Close() error { return nil }

// WAVSink records incoming PCM16 frames to a WAV file. The RIFF header is
// written up front with zero sizes and patched on Close.
type WAVSink struct {
	mu        sync.Mutex
	f         *os.File
	format    Format
	dataBytes int
	started   bool
}

// NewWAVSink creates the file and reserves the WAV header. The format must
// match the frames that will be played into it.
func NewWAVSink(path string, format Format) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audio: create wav file: %w", err)
	}
	s := &WAVSink{f: f, format: format}
	if err := s.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Name implements Playback.
func (s *WAVSink) Name() string { return "wav" }

// Play implements Playback.
func (s *WAVSink) Play(ctx context.Context, in <-chan Frame) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-in:
			if !ok {
				return nil
			}
			s.mu.Lock()
			if s.f != nil {
				if _, err := s.f.Write(frame.Data); err != nil {
					s.mu.Unlock()
					return fmt.Errorf("audio: write wav data: %w", err)
				}
				s.dataBytes += len(frame.Data)
			}
			s.mu.Unlock()
		}
	}
}

// Close patches the RIFF sizes and closes the file.
func (s *WAVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil

	if _, err := f.Seek(4, 0); err == nil {
		binary.Write(f, binary.LittleEndian, uint32(36+s.dataBytes))
	}
	if _, err := f.Seek(40, 0); err == nil {
		binary.Write(f, binary.LittleEndian, uint32(s.dataBytes))
	}
	return f.Close()
}

func (s *WAVSink) writeHeader() error {
	f := s.f
	sampleRate := s.format.SampleRate
	channels := s.format.Channels

	// RIFF header, sizes patched on Close
	f.Write([]byte("RIFF"))
	binary.Write(f, binary.LittleEndian, uint32(0))
	f.Write([]byte("WAVE"))

	// fmt chunk
	f.Write([]byte("fmt "))
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1))
	binary.Write(f, binary.LittleEndian, uint16(channels))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(f, binary.LittleEndian, uint16(channels*2))
	binary.Write(f, binary.LittleEndian, uint16(16))

	// data chunk
	f.Write([]byte("data"))
	return binary.Write(f, binary.LittleEndian, uint32(0))
}
