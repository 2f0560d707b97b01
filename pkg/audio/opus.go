package audio

import (
	"fmt"
	"time"

	"gopkg.in/hraban/opus.v2"
)

// FrameDuration is the opus frame size used on the wire.
const FrameDuration = 20 * time.Millisecond

// maxDecodedSamples is the largest opus frame at 48kHz (120ms).
const maxDecodedSamples = 5760

// OpusEncoder packetizes PCM16 audio into fixed-duration opus frames.
// Input that does not align to the frame boundary is buffered until the
// next call.
type OpusEncoder struct {
	enc       *opus.Encoder
	frameSize int // samples per frame per channel
	channels  int
	pending   []int16
	buf       []byte
}

// NewOpusEncoder creates an encoder for the given PCM input format.
func NewOpusEncoder(sampleRate, channels int) (*OpusEncoder, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus encoder: %w", err)
	}
	frameSize := sampleRate * int(FrameDuration.Milliseconds()) / 1000
	return &OpusEncoder{
		enc:       enc,
		frameSize: frameSize,
		channels:  channels,
		buf:       make([]byte, 4000),
	}, nil
}

// Encode consumes PCM16 bytes and returns zero or more complete opus
// packets, each covering FrameDuration of audio.
func (e *OpusEncoder) Encode(pcm []byte) ([][]byte, error) {
	e.pending = append(e.pending, BytesToInt16(pcm)...)

	perFrame := e.frameSize * e.channels
	var packets [][]byte
	for len(e.pending) >= perFrame {
		frame := e.pending[:perFrame]
		n, err := e.enc.Encode(frame, e.buf)
		if err != nil {
			return packets, fmt.Errorf("audio: opus encode: %w", err)
		}
		packet := make([]byte, n)
		copy(packet, e.buf[:n])
		packets = append(packets, packet)
		e.pending = e.pending[perFrame:]
	}
	return packets, nil
}

// OpusDecoder decodes opus packets into PCM16 bytes.
type OpusDecoder struct {
	dec      *opus.Decoder
	channels int
	buf      []int16
}

// NewOpusDecoder creates a decoder producing PCM at the given format.
func NewOpusDecoder(sampleRate, channels int) (*OpusDecoder, error) {
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus decoder: %w", err)
	}
	return &OpusDecoder{
		dec:      dec,
		channels: channels,
		buf:      make([]int16, maxDecodedSamples*channels),
	}, nil
}

// Decode decodes one opus packet and returns the PCM16 bytes.
func (d *OpusDecoder) Decode(packet []byte) ([]byte, error) {
	n, err := d.dec.Decode(packet, d.buf)
	if err != nil {
		return nil, fmt.Errorf("audio: opus decode: %w", err)
	}
	return Int16ToBytes(d.buf[:n*d.channels]), nil
}
