package realtime

import (
	"encoding/json"
	"sync"

	"github.com/itannix/voice-client-go/internal/log"
)

// messageSender is the raw send path under the signaling channel. The
// production implementation wraps a pion data channel; tests substitute
// an in-memory recorder.
type messageSender interface {
	Send(data []byte) error
}

// channelState is the lifecycle of the signaling channel.
type channelState int

const (
	channelOpening channelState = iota
	channelOpen
	channelClosed
)

// signalChannel gates structured event sends on the data channel's
// lifecycle. It is the single source of truth for whether events may be
// sent: sends before open or after close are silent no-ops, so result
// delivery after disconnect never fails loudly.
type signalChannel struct {
	mu     sync.Mutex
	state  channelState
	sender messageSender
}

func newSignalChannel(sender messageSender) *signalChannel {
	return &signalChannel{state: channelOpening, sender: sender}
}

// markOpen transitions opening -> open. Returns false if the channel
// already left the opening state.
func (s *signalChannel) markOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != channelOpening {
		return false
	}
	s.state = channelOpen
	return true
}

// markClosed transitions to closed from any state. Returns true if the
// channel had been open.
func (s *signalChannel) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasOpen := s.state == channelOpen
	s.state = channelClosed
	return wasOpen
}

func (s *signalChannel) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == channelOpen
}

// send marshals and sends a single event, silently dropping it when the
// channel is not open.
func (s *signalChannel) send(event any) error {
	return s.sendSequence(event)
}

// sendSequence sends events back to back under one lock so no other
// outbound send interleaves between them.
func (s *signalChannel) sendSequence(events ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != channelOpen || s.sender == nil {
		return nil
	}
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := s.sender.Send(data); err != nil {
			log.Warn("signaling send failed", "err", err)
			return err
		}
	}
	return nil
}
