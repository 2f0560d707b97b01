package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	pionmedia "github.com/pion/webrtc/v3/pkg/media"

	"github.com/itannix/voice-client-go/internal/log"
	"github.com/itannix/voice-client-go/pkg/audio"
)

// Capture format for the microphone leg: mono 48kHz, matching the opus
// track on the wire.
const (
	captureSampleRate = 48000
	captureChannels   = 1
)

// mediaSession owns the microphone track and the remote playback path for
// one connection attempt. It is built fresh on every Connect and torn down
// whole on Disconnect; nothing survives across attempts.
type mediaSession struct {
	mic  audio.Capture
	sink audio.Playback

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	volume  float64
	bound   bool // remote track arrived and the sink was started
	playing bool
}

func newMediaSession(mic audio.Capture, sink audio.Playback) *mediaSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &mediaSession{
		mic:    mic,
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
		volume: 1.0,
	}
}

// attachMicrophone starts the capture source and feeds it into an opus
// track on the peer connection.
func (m *mediaSession) attachMicrophone(pc *webrtc.PeerConnection) error {
	if m.mic == nil {
		return ErrMicrophoneUnavailable
	}

	frames, err := m.mic.Start(m.ctx, audio.Constraints{
		Format: audio.Format{
			SampleRate: captureSampleRate,
			Channels:   captureChannels,
			Encoding:   audio.EncodingPCM16,
		},
		EchoCancellation: true,
		NoiseSuppression: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}

	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: captureSampleRate,
		Channels:  captureChannels,
	}, "audio", "microphone")
	if err != nil {
		return fmt.Errorf("realtime: create audio track: %w", err)
	}

	if _, err := pc.AddTrack(track); err != nil {
		return fmt.Errorf("realtime: add audio track: %w", err)
	}

	encoder, err := audio.NewOpusEncoder(captureSampleRate, captureChannels)
	if err != nil {
		return err
	}

	go m.pumpMicrophone(frames, encoder, track)
	return nil
}

func (m *mediaSession) pumpMicrophone(frames <-chan audio.Frame, encoder *audio.OpusEncoder, track *webrtc.TrackLocalStaticSample) {
	for {
		select {
		case <-m.ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			packets, err := encoder.Encode(frame.Data)
			if err != nil {
				log.Warn("microphone encode failed", "err", err)
				continue
			}
			for _, packet := range packets {
				if err := track.WriteSample(pionmedia.Sample{
					Data:     packet,
					Duration: audio.FrameDuration,
				}); err != nil {
					log.Debug("write sample failed", "err", err)
				}
			}
		}
	}
}

// bindRemoteTrack starts playback for the first remote audio track.
// Exactly one sink is bound per session; later tracks are ignored. A sink
// that refuses to start is logged and tolerated: playback is best effort,
// never a reason to fail the session.
func (m *mediaSession) bindRemoteTrack(track *webrtc.TrackRemote) {
	m.mu.Lock()
	if m.bound {
		m.mu.Unlock()
		return
	}
	m.bound = true
	m.playing = true
	m.mu.Unlock()

	frames := make(chan audio.Frame, 32)

	if m.sink != nil {
		go func() {
			if err := m.sink.Play(m.ctx, frames); err != nil {
				log.Warn("playback sink did not start", "sink", m.sink.Name(), "err", err)
			}
		}()
	}

	go m.pumpRemote(track, frames)
}

func (m *mediaSession) pumpRemote(track *webrtc.TrackRemote, frames chan<- audio.Frame) {
	defer close(frames)

	decoder, err := audio.NewOpusDecoder(captureSampleRate, captureChannels)
	if err != nil {
		log.Warn("remote audio decoder unavailable", "err", err)
		return
	}

	format := audio.Format{
		SampleRate: captureSampleRate,
		Channels:   captureChannels,
		Encoding:   audio.EncodingPCM16,
	}

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		packet, _, err := track.ReadRTP()
		if err != nil {
			return
		}
		payload := opusPayload(packet)
		if payload == nil {
			continue
		}

		m.mu.Lock()
		playing := m.playing
		gain := m.volume
		m.mu.Unlock()
		if !playing {
			continue
		}

		pcm, err := decoder.Decode(payload)
		if err != nil {
			continue
		}
		audio.ApplyGain(pcm, gain)

		// Drop frames rather than stall the RTP read loop on a slow sink.
		select {
		case frames <- audio.Frame{Data: pcm, Format: format, Timestamp: time.Now()}:
		default:
		}
	}
}

// opusPayload returns the opus payload of an RTP packet, or nil for
// packets with nothing to decode (padding or empty payloads).
func opusPayload(pkt *rtp.Packet) []byte {
	if len(pkt.Payload) == 0 {
		return nil
	}
	return pkt.Payload
}

// setVolume sets the playback gain, clamped to [0, 1]. It is a no-op
// before a remote track is bound and never fails.
func (m *mediaSession) setVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bound {
		return
	}
	m.volume = v
}

// volumeLevel returns the current playback gain.
func (m *mediaSession) volumeLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// sinkBound reports whether a remote track has been bound.
func (m *mediaSession) sinkBound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bound
}

// pausePlayback stops forwarding remote audio and reports whether audio
// had been playing.
func (m *mediaSession) pausePlayback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.playing
	m.playing = false
	return was
}

// close releases the capture source, the sink, and all pump goroutines.
// Safe to call more than once.
func (m *mediaSession) close() {
	m.cancel()

	m.mu.Lock()
	m.playing = false
	m.bound = false
	m.mu.Unlock()

	if m.mic != nil {
		m.mic.Close()
	}
	if m.sink != nil {
		m.sink.Close()
	}
}
