package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/itannix/voice-client-go/internal/httpc"
)

func testNegotiator(serverURL string) *negotiator {
	return &negotiator{
		http:         httpc.NewClient(httpc.DefaultTimeout),
		serverURL:    serverURL,
		clientID:     "dev-client",
		clientSecret: "s3cr3t",
	}
}

func TestCreateSessionSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/realtime/sessions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Client-Id") != "dev-client" {
			t.Errorf("X-Client-Id = %q", r.Header.Get("X-Client-Id"))
		}
		if r.Header.Get("X-Client-Secret") != "s3cr3t" {
			t.Errorf("X-Client-Secret = %q", r.Header.Get("X-Client-Secret"))
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body struct {
			Modalities []string `json:"modalities"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if want := []string{"text", "audio"}; !reflect.DeepEqual(body.Modalities, want) {
			t.Errorf("modalities = %v, want %v", body.Modalities, want)
		}

		// Both URL shapes appear in descriptors in the wild.
		io.WriteString(w, `{
			"id": "sess_123",
			"iceServers": [
				{"urls": "stun:stun.example.com:3478"},
				{"urls": ["turn:turn.example.com:3478"], "username": "u", "credential": "p"}
			]
		}`)
	}))
	defer ts.Close()

	session, err := testNegotiator(ts.URL).createSession(context.Background(), []string{"text", "audio"})
	if err != nil {
		t.Fatalf("createSession: %v", err)
	}
	if session.ID != "sess_123" {
		t.Errorf("id = %q", session.ID)
	}
	if len(session.ICEServers) != 2 {
		t.Fatalf("ice servers = %d, want 2", len(session.ICEServers))
	}
	if want := (URLList{"stun:stun.example.com:3478"}); !reflect.DeepEqual(session.ICEServers[0].URLs, want) {
		t.Errorf("urls[0] = %v", session.ICEServers[0].URLs)
	}
	if session.ICEServers[1].Username != "u" || session.ICEServers[1].Credential != "p" {
		t.Errorf("turn credentials = %+v", session.ICEServers[1])
	}
}

func TestCreateSessionUnknownClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"unknown client","hint":"register the client first"}`)
	}))
	defer ts.Close()

	_, err := testNegotiator(ts.URL).createSession(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Message != "unknown client" {
		t.Errorf("message = %q, want the server's message verbatim", apiErr.Message)
	}
	if apiErr.Hint != "register the client first" {
		t.Errorf("hint = %q", apiErr.Hint)
	}
	if !apiErr.IsNotFound() {
		t.Errorf("IsNotFound = false for %d", apiErr.StatusCode)
	}
}

func TestCreateSessionFallbackMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	}))
	defer ts.Close()

	_, err := testNegotiator(ts.URL).createSession(context.Background(), []string{"text"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if want := "session creation failed: Internal Server Error"; apiErr.Message != want {
		t.Errorf("message = %q, want %q", apiErr.Message, want)
	}
	if !apiErr.IsServerError() {
		t.Errorf("IsServerError = false for %d", apiErr.StatusCode)
	}
}

func TestExchangeSDP(t *testing.T) {
	const offer = "v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\n"
	const answer = "v=0\r\no=- 2 2 IN IP4 0.0.0.0\r\n"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/realtime" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/sdp" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Client-Id") != "dev-client" {
			t.Errorf("X-Client-Id = %q", r.Header.Get("X-Client-Id"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != offer {
			t.Errorf("body = %q, want the raw offer", body)
		}
		io.WriteString(w, answer)
	}))
	defer ts.Close()

	got, err := testNegotiator(ts.URL).exchangeSDP(context.Background(), offer)
	if err != nil {
		t.Fatalf("exchangeSDP: %v", err)
	}
	if got != answer {
		t.Errorf("answer = %q", got)
	}
}

func TestExchangeSDPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := testNegotiator(ts.URL).exchangeSDP(context.Background(), "v=0")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if !apiErr.IsUnauthorized() {
		t.Errorf("IsUnauthorized = false for %d", apiErr.StatusCode)
	}
	if want := "SDP exchange failed: Unauthorized"; apiErr.Message != want {
		t.Errorf("message = %q, want %q", apiErr.Message, want)
	}
}

func TestURLListShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want URLList
		err  bool
	}{
		{"single string", `"stun:a"`, URLList{"stun:a"}, false},
		{"list", `["stun:a","turn:b"]`, URLList{"stun:a", "turn:b"}, false},
		{"empty list", `[]`, URLList{}, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got URLList
			err := json.Unmarshal([]byte(tt.in), &got)
			if (err != nil) != tt.err {
				t.Fatalf("err = %v, want err=%v", err, tt.err)
			}
			if !tt.err && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
