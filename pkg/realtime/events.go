package realtime

// Client event types sent over the signaling channel.
const (
	typeSessionUpdate  = "session.update"
	typeItemCreate     = "conversation.item.create"
	typeResponseCreate = "response.create"
)

// Server event types the client consumes. Every other type is valid
// protocol and ignored.
const (
	typeInputTranscriptDone     = "conversation.item.input_audio_transcription.completed"
	typeResponseTranscriptDelta = "response.audio_transcript.delta"
	typeResponseTranscriptDone  = "response.audio_transcript.done"
	typeOutputItemDone          = "response.output_item.done"
)

// Conversation item types the client produces and consumes.
const (
	itemFunctionCall       = "function_call"
	itemFunctionCallOutput = "function_call_output"
)

// sessionUpdateEvent configures the server side of the session. The client
// sends one immediately when the signaling channel opens, enabling input
// audio transcription.
type sessionUpdateEvent struct {
	EventID string        `json:"event_id,omitempty"`
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	InputAudioTranscription *transcriptionConfig `json:"input_audio_transcription,omitempty"`
}

type transcriptionConfig struct {
	Model string `json:"model"`
}

// itemCreateEvent delivers a function-call result back to the assistant.
type itemCreateEvent struct {
	EventID string             `json:"event_id,omitempty"`
	Type    string             `json:"type"`
	Item    functionCallOutput `json:"item"`
}

type functionCallOutput struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// responseCreateEvent asks the assistant to resume generation. It must
// always follow the function_call_output item it belongs to.
type responseCreateEvent struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

// serverEvent is the inbound envelope. Only the fields the client reads
// are declared; unknown fields are ignored by encoding/json.
type serverEvent struct {
	Type       string      `json:"type"`
	Transcript string      `json:"transcript,omitempty"`
	Delta      string      `json:"delta,omitempty"`
	Item       *serverItem `json:"item,omitempty"`
}

type serverItem struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	CallID    string `json:"call_id"`
	Arguments string `json:"arguments"`
}

// FunctionCall is a structured request from the assistant asking the
// application to perform a named action. CallID is opaque and must be
// echoed back verbatim with the result.
type FunctionCall struct {
	// Name is the function being invoked.
	Name string

	// Arguments contains the parsed arguments from the assistant. Absent
	// or malformed argument payloads arrive as an empty map.
	Arguments map[string]any

	// CallID matches the result to this call.
	CallID string
}
