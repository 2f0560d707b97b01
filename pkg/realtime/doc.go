// Package realtime implements the ItanniX voice-session client.
//
// The client establishes a real-time audio session with the remote voice
// service over WebRTC: a two-step HTTP handshake creates the session and
// exchanges SDP descriptors, microphone audio flows over the peer
// connection's audio track, and structured JSON control events flow over an
// ordered, reliable data channel. A small fixed set of device-control
// function calls (volume, mute, stop) is resolved locally; everything else
// is surfaced to the application.
//
// # Usage
//
//	client, err := realtime.NewClient(realtime.DefaultConfig().
//		WithCredentials(clientID, clientSecret))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client.SetMicrophone(mic)   // any audio.Capture
//	client.SetPlayback(speaker) // any audio.Playback
//
//	client.OnTranscript(func(text string) {
//		fmt.Printf("You: %s\n", text)
//	})
//	client.OnResponse(func(text string, done bool) {
//		if done {
//			fmt.Printf("Assistant: %s\n", text)
//		}
//	})
//	client.OnFunctionCall(func(call realtime.FunctionCall) {
//		// Calls the client did not resolve locally arrive here.
//		client.SendFunctionResult(call.CallID, map[string]any{"ok": true})
//	})
//
//	if err := client.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect()
//
// # Lifecycle
//
// A client moves disconnected -> connecting -> connected and back. Every
// failure during connection tears down whatever was partially built and
// returns the client to disconnected; there is no automatic reconnect.
// Connect while not disconnected fails fast with ErrAlreadyConnected.
// Disconnect is idempotent and safe at any time, including mid-handshake.
package realtime
