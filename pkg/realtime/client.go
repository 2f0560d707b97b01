package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"

	"github.com/itannix/voice-client-go/internal/httpc"
	"github.com/itannix/voice-client-go/internal/log"
	"github.com/itannix/voice-client-go/pkg/audio"
)

// dcSender adapts a pion data channel to the channel send path.
type dcSender struct {
	dc *webrtc.DataChannel
}

func (s dcSender) Send(data []byte) error { return s.dc.Send(data) }

// Client is a voice-session client. Create one with NewClient, wire
// callbacks and media endpoints, then call Connect. A single client runs
// one session at a time; after Disconnect it can connect again, with all
// session state built anew.
type Client struct {
	config     Config
	httpClient *http.Client

	mic  audio.Capture
	sink audio.Playback

	// Callbacks
	onStatus       func(status Status)
	onTranscript   func(text string)
	onResponse     func(text string, done bool)
	onFunctionCall func(call FunctionCall)
	onError        func(err error)

	// Session state, rebuilt per connection attempt
	mu      sync.Mutex
	status  Status
	pc      *webrtc.PeerConnection
	channel *signalChannel
	media   *mediaSession
	router  *router
}

// NewClient creates a client from the configuration. When no client
// secret is configured, a 32-byte random secret is generated here and
// kept for the client's lifetime; read it back via Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if len(cfg.Modalities) == 0 {
		cfg.Modalities = []string{"text", "audio"}
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.ICEGatherTimeout == 0 {
		cfg.ICEGatherTimeout = DefaultICEGatherTimeout
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ClientSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return nil, fmt.Errorf("realtime: generate client secret: %w", err)
		}
		cfg.ClientSecret = secret
	}

	return &Client{
		config:     cfg,
		httpClient: httpc.NewClient(cfg.HTTPTimeout),
		status:     StatusDisconnected,
	}, nil
}

// Config returns the client's configuration, including a generated
// client secret.
func (c *Client) Config() Config {
	return c.config
}

// SetMicrophone sets the capture source for outgoing audio. Must be set
// before Connect.
func (c *Client) SetMicrophone(mic audio.Capture) {
	c.mic = mic
}

// SetPlayback sets the sink for the assistant's audio. Must be set before
// Connect. Without a sink the session still runs; remote audio is dropped.
func (c *Client) SetPlayback(sink audio.Playback) {
	c.sink = sink
}

// OnStatusChange sets the callback for connection status transitions.
func (c *Client) OnStatusChange(fn func(status Status)) {
	c.onStatus = fn
}

// OnTranscript sets the callback for completed user-speech transcripts.
func (c *Client) OnTranscript(fn func(text string)) {
	c.onTranscript = fn
}

// OnResponse sets the callback for assistant text. Streaming deltas
// arrive with done=false; the full text arrives once with done=true.
func (c *Client) OnResponse(fn func(text string, done bool)) {
	c.onResponse = fn
}

// OnFunctionCall sets the callback for function calls the client did not
// resolve locally. Answer with SendFunctionResult.
func (c *Client) OnFunctionCall(fn func(call FunctionCall)) {
	c.onFunctionCall = fn
}

// OnError sets the callback for asynchronous errors raised outside a
// Connect call.
func (c *Client) OnError(fn func(err error)) {
	c.onError = fn
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected returns true once the signaling channel is open.
func (c *Client) IsConnected() bool {
	return c.Status() == StatusConnected
}

// Connect establishes the session: creates it remotely, builds the peer
// connection and signaling channel, attaches the microphone, and performs
// the SDP exchange. Any failure tears down everything built so far and
// returns the client to disconnected. Status becomes connected when the
// signaling channel opens, which follows the SDP exchange.
//
// Connect fails fast with ErrAlreadyConnected while a session is
// connecting or connected. A Disconnect issued while Connect is still
// negotiating wins: the attempt is discarded and Connect returns nil.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.status = StatusConnecting
	c.mu.Unlock()
	c.notifyStatus(StatusConnecting)

	if err := c.connect(ctx); err != nil {
		c.Disconnect()
		return err
	}
	return nil
}

func (c *Client) connect(ctx context.Context) error {
	neg := &negotiator{
		http:         c.httpClient,
		serverURL:    c.config.ServerURL,
		clientID:     c.config.ClientID,
		clientSecret: c.config.ClientSecret,
	}

	session, err := neg.createSession(ctx, c.config.Modalities)
	if err != nil {
		return err
	}
	log.Debug("session created", "id", session.ID)

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: iceServers(session),
	})
	if err != nil {
		return fmt.Errorf("realtime: create peer connection: %w", err)
	}

	ordered := true
	dc, err := pc.CreateDataChannel("messages", &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		pc.Close()
		return fmt.Errorf("realtime: create data channel: %w", err)
	}

	channel := newSignalChannel(dcSender{dc})
	media := newMediaSession(c.mic, c.sink)
	rt := &router{
		device: &deviceControls{media: media},
		onTranscript: func(text string) {
			if c.onTranscript != nil {
				c.onTranscript(text)
			}
		},
		onResponse: func(text string, done bool) {
			if c.onResponse != nil {
				c.onResponse(text, done)
			}
		},
		onFunctionCall: func(call FunctionCall) {
			if c.onFunctionCall != nil {
				c.onFunctionCall(call)
			}
		},
		deliverResult: func(callID string, result map[string]any) {
			if err := sendFunctionResult(channel, callID, result); err != nil {
				c.notifyError(err)
			}
		},
		debug: c.config.Debug,
	}

	c.mu.Lock()
	if c.status != StatusConnecting {
		c.mu.Unlock()
		media.close()
		pc.Close()
		return nil
	}
	c.pc = pc
	c.channel = channel
	c.media = media
	c.router = rt
	c.mu.Unlock()

	dc.OnOpen(func() {
		if !channel.markOpen() {
			return
		}
		log.Debug("signaling channel open")
		channel.send(sessionUpdateEvent{
			EventID: uuid.NewString(),
			Type:    typeSessionUpdate,
			Session: sessionConfig{
				InputAudioTranscription: &transcriptionConfig{Model: c.config.TranscriptionModel},
			},
		})
		c.transitionConnected()
	})
	dc.OnClose(func() {
		c.handleChannelClosed(channel)
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		rt.dispatch(msg.Data)
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track.Kind() == webrtc.RTPCodecTypeAudio {
			log.Debug("remote audio track received", "codec", track.Codec().MimeType)
			media.bindRemoteTrack(track)
		}
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Debug("peer connection state", "state", state.String())
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			c.handleChannelClosed(channel)
		}
	})

	if err := media.attachMicrophone(pc); err != nil {
		return err
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("realtime: create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("realtime: set local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-time.After(c.config.ICEGatherTimeout):
		return fmt.Errorf("realtime: exchange sdp: %w", ErrICEGatherTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	local := pc.LocalDescription()
	if local == nil {
		return errors.New("realtime: no local description after ICE gathering")
	}

	answer, err := neg.exchangeSDP(ctx, local.SDP)
	if err != nil {
		return err
	}

	c.mu.Lock()
	live := c.status == StatusConnecting
	c.mu.Unlock()
	if !live {
		// Disconnected while the exchange was in flight; discard the answer.
		return nil
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return fmt.Errorf("realtime: set remote description: %w", err)
	}

	return nil
}

// Disconnect closes the signaling channel, the peer connection, and the
// media session, and sets the status to disconnected. It is idempotent
// and safe at any point, including mid-handshake.
func (c *Client) Disconnect() {
	c.mu.Lock()
	channel := c.channel
	pc := c.pc
	media := c.media
	c.channel = nil
	c.pc = nil
	c.media = nil
	c.router = nil
	prev := c.status
	c.status = StatusDisconnected
	c.mu.Unlock()

	if channel != nil {
		channel.markClosed()
	}
	if media != nil {
		media.close()
	}
	if pc != nil {
		if err := pc.Close(); err != nil {
			log.Debug("peer connection close", "err", err)
		}
	}

	if prev != StatusDisconnected {
		c.notifyStatus(StatusDisconnected)
	}
}

// SendFunctionResult delivers a function-call result to the assistant: a
// conversation.item.create event carrying the output, immediately followed
// by a response.create event, with nothing interleaved between them.
// Calling it while disconnected sends nothing and returns nil.
func (c *Client) SendFunctionResult(callID string, result map[string]any) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return nil
	}
	return sendFunctionResult(channel, callID, result)
}

func sendFunctionResult(channel *signalChannel, callID string, result map[string]any) error {
	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("realtime: marshal function result: %w", err)
	}

	item := itemCreateEvent{
		EventID: uuid.NewString(),
		Type:    typeItemCreate,
		Item: functionCallOutput{
			Type:   itemFunctionCallOutput,
			CallID: callID,
			Output: string(output),
		},
	}
	trigger := responseCreateEvent{
		EventID: uuid.NewString(),
		Type:    typeResponseCreate,
	}
	return channel.sendSequence(item, trigger)
}

// transitionConnected reports connected exactly once per attempt, on the
// signaling channel reaching open.
func (c *Client) transitionConnected() {
	c.mu.Lock()
	if c.status != StatusConnecting {
		c.mu.Unlock()
		return
	}
	c.status = StatusConnected
	c.mu.Unlock()
	c.notifyStatus(StatusConnected)
}

// handleChannelClosed reacts to the signaling channel or peer connection
// going away. Closure while connected is a normal transition to
// disconnected, reported only through the status callback; closure before
// the channel ever opened is surfaced as an error.
func (c *Client) handleChannelClosed(channel *signalChannel) {
	wasOpen := channel.markClosed()

	c.mu.Lock()
	if c.channel != channel {
		// A stale session's teardown; nothing to do.
		c.mu.Unlock()
		return
	}
	status := c.status
	c.mu.Unlock()

	switch status {
	case StatusConnected:
		log.Info("signaling channel closed")
		c.Disconnect()
	case StatusConnecting:
		if !wasOpen {
			c.notifyError(ErrChannelClosed)
		}
		c.Disconnect()
	}
}

func (c *Client) notifyStatus(status Status) {
	if c.onStatus != nil {
		c.onStatus(status)
	}
}

func (c *Client) notifyError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// iceServers maps the session's ICE servers to the peer connection
// configuration, falling back to a public STUN server when the session
// carries none.
func iceServers(session *Session) []webrtc.ICEServer {
	if session == nil || len(session.ICEServers) == 0 {
		return []webrtc.ICEServer{{URLs: []string{defaultSTUNServer}}}
	}
	servers := make([]webrtc.ICEServer, 0, len(session.ICEServers))
	for _, s := range session.ICEServers {
		server := webrtc.ICEServer{
			URLs:     []string(s.URLs),
			Username: s.Username,
		}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		servers = append(servers, server)
	}
	return servers
}
