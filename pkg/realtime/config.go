package realtime

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Defaults for Config fields left zero.
const (
	DefaultServerURL          = "https://api.itannix.com"
	DefaultTranscriptionModel = "whisper-1"
	DefaultICEGatherTimeout   = 10 * time.Second
	DefaultHTTPTimeout        = 30 * time.Second
)

// defaultSTUNServer is used when the session descriptor carries no ICE
// servers of its own.
const defaultSTUNServer = "stun:stun.l.google.com:19302"

// Config holds the tunable parameters of a voice-session client.
type Config struct {
	// ServerURL is the base URL of the realtime service.
	ServerURL string

	// ClientID identifies the client to the service. Required.
	ClientID string

	// ClientSecret authenticates the client. When empty, a 32-byte
	// cryptographically random secret is generated at client creation and
	// reused for the client's lifetime.
	ClientSecret string

	// Modalities requested for the session (default: text and audio).
	Modalities []string

	// TranscriptionModel enables server-side input transcription, sent in
	// the session.update emitted when the control channel opens.
	TranscriptionModel string

	// ICEGatherTimeout bounds the wait for ICE gathering to complete.
	// Expiry aborts the connection attempt instead of hanging.
	ICEGatherTimeout time.Duration

	// HTTPTimeout bounds each handshake request.
	HTTPTimeout time.Duration

	// Debug enables verbose event logging.
	Debug bool
}

// DefaultConfig returns a Config with production defaults. Credentials
// must still be supplied.
func DefaultConfig() Config {
	return Config{
		ServerURL:          DefaultServerURL,
		Modalities:         []string{"text", "audio"},
		TranscriptionModel: DefaultTranscriptionModel,
		ICEGatherTimeout:   DefaultICEGatherTimeout,
		HTTPTimeout:        DefaultHTTPTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ServerURL == "" {
		return ErrMissingServerURL
	}
	return nil
}

// WithServerURL returns a copy with the server URL set.
func (c Config) WithServerURL(url string) Config {
	c.ServerURL = url
	return c
}

// WithCredentials returns a copy with the credentials set.
func (c Config) WithCredentials(clientID, clientSecret string) Config {
	c.ClientID = clientID
	c.ClientSecret = clientSecret
	return c
}

// WithDebug returns a copy with debug logging enabled.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}

// generateSecret returns a hex-encoded 32-byte random secret.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
