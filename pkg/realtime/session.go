package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Session is the server-issued descriptor returned by session creation.
// It lives for one connection attempt and is discarded on disconnect.
type Session struct {
	ID         string      `json:"id"`
	ICEServers []ICEServer `json:"iceServers"`
}

// ICEServer describes one STUN/TURN server from the session descriptor.
type ICEServer struct {
	URLs       URLList `json:"urls"`
	Username   string  `json:"username,omitempty"`
	Credential string  `json:"credential,omitempty"`
}

// URLList accepts either a single URL string or a list of URLs; both
// shapes appear in ICE server descriptors in the wild.
type URLList []string

// UnmarshalJSON implements json.Unmarshaler.
func (u *URLList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*u = URLList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*u = URLList(many)
	return nil
}

// negotiator performs the two-step HTTP handshake: create the remote
// session, then trade the local SDP offer for the remote answer. It has no
// side effects beyond network I/O.
type negotiator struct {
	http         *http.Client
	serverURL    string
	clientID     string
	clientSecret string
}

// createSession creates a remote session and returns its descriptor.
func (n *negotiator) createSession(ctx context.Context, modalities []string) (*Session, error) {
	body, err := json.Marshal(map[string]any{"modalities": modalities})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.serverURL+"/v1/realtime/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("realtime: create session: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	n.setAuth(req)

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("realtime: create session: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("realtime: create session: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("realtime: create session: %w",
			parseAPIError(resp.StatusCode, respBody, "session creation failed"))
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("realtime: create session: invalid response: %w", err)
	}
	return &session, nil
}

// exchangeSDP sends the local offer as a raw SDP body and returns the raw
// SDP answer.
func (n *negotiator) exchangeSDP(ctx context.Context, offerSDP string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.serverURL+"/v1/realtime", bytes.NewReader([]byte(offerSDP)))
	if err != nil {
		return "", fmt.Errorf("realtime: exchange sdp: %w", err)
	}
	req.Header.Set("Content-Type", "application/sdp")
	n.setAuth(req)

	resp, err := n.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("realtime: exchange sdp: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("realtime: exchange sdp: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("realtime: exchange sdp: %w",
			parseAPIError(resp.StatusCode, respBody, "SDP exchange failed"))
	}

	return string(respBody), nil
}

func (n *negotiator) setAuth(req *http.Request) {
	req.Header.Set("X-Client-Id", n.clientID)
	req.Header.Set("X-Client-Secret", n.clientSecret)
}
