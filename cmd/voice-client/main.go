// Command voice-client runs an interactive voice session against the
// ItanniX Realtime API and prints transcripts as they arrive.
//
// Usage:
//
//	go run ./cmd/voice-client --client-id my-device
//	go run ./cmd/voice-client --client-id my-device --audio-in speech.pcm --audio-out reply.wav
//	go run ./cmd/voice-client --client-id my-device --duration 30s --debug
//
// Environment variables (a .env file is loaded when present):
//
//	ITANNIX_CLIENT_ID     - Client ID (alternative to --client-id)
//	ITANNIX_CLIENT_SECRET - Client secret; generated when omitted
//	ITANNIX_SERVER_URL    - Service base URL
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itannix/voice-client-go/internal/log"
	"github.com/itannix/voice-client-go/pkg/audio"
	"github.com/itannix/voice-client-go/pkg/realtime"
)

func main() {
	godotenv.Load()

	clientID := flag.String("client-id", os.Getenv("ITANNIX_CLIENT_ID"), "Client ID (required)")
	clientSecret := flag.String("client-secret", os.Getenv("ITANNIX_CLIENT_SECRET"), "Client secret (generated when empty)")
	serverURL := flag.String("server-url", os.Getenv("ITANNIX_SERVER_URL"), "Service base URL")
	duration := flag.Duration("duration", 0, "Session length; 0 runs until interrupted")
	audioIn := flag.String("audio-in", "", "Raw PCM16 48kHz mono file to stream as microphone input; silence when empty")
	audioOut := flag.String("audio-out", "", "WAV file to record the assistant's audio; discarded when empty")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	if *clientID == "" {
		fmt.Println("❌ --client-id or ITANNIX_CLIENT_ID is required")
		os.Exit(1)
	}

	cfg := realtime.DefaultConfig().
		WithCredentials(*clientID, *clientSecret).
		WithDebug(*debug)
	if *serverURL != "" {
		cfg = cfg.WithServerURL(*serverURL)
	}

	client, err := realtime.NewClient(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if *clientSecret == "" {
		fmt.Printf("🔑 Generated client secret: %s\n", client.Config().ClientSecret)
	}

	mic, err := openMicrophone(*audioIn)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	client.SetMicrophone(mic)

	sink, err := openPlayback(*audioOut)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	client.SetPlayback(sink)

	client.OnStatusChange(func(status realtime.Status) {
		fmt.Printf("🔌 %s\n", status)
	})
	client.OnTranscript(func(text string) {
		fmt.Printf("🎤 You: %s\n", text)
	})
	client.OnResponse(func(text string, done bool) {
		if done {
			fmt.Printf("💬 Assistant: %s\n", text)
		}
	})
	client.OnFunctionCall(func(call realtime.FunctionCall) {
		fmt.Printf("🛠  Function call: %s %v\n", call.Name, call.Arguments)
		result := map[string]any{
			"success": false,
			"message": fmt.Sprintf("function %q is not available on this device", call.Name),
		}
		if err := client.SendFunctionResult(call.CallID, result); err != nil {
			log.Warn("send function result", "err", err)
		}
	})
	client.OnError(func(err error) {
		log.Error("session error", "err", err)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("🔗 Connecting to %s...\n", client.Config().ServerURL)
	if err := client.Connect(ctx); err != nil {
		fmt.Printf("❌ Connect failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	select {
	case <-sigChan:
		fmt.Println("\n🛑 Interrupted")
	case <-deadline:
		fmt.Println("⏱  Session time elapsed")
	}
}

func openMicrophone(path string) (audio.Capture, error) {
	if path == "" {
		return audio.NewSilenceCapture(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio input: %w", err)
	}
	return audio.NewReaderCapture(f), nil
}

func openPlayback(path string) (audio.Playback, error) {
	if path == "" {
		return audio.NewDiscardSink(), nil
	}
	return audio.NewWAVSink(path, audio.Format{
		SampleRate: 48000,
		Channels:   1,
		Encoding:   audio.EncodingPCM16,
	})
}
