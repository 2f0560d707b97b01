package realtime

import (
	"encoding/json"

	"github.com/itannix/voice-client-go/internal/log"
)

// router classifies inbound signaling events and fans them out to the
// transcript, assistant-message, and function-call paths. Events arrive in
// channel order and are dispatched synchronously, so notification order
// matches wire order.
type router struct {
	device *deviceControls

	onTranscript   func(text string)
	onResponse     func(text string, done bool)
	onFunctionCall func(call FunctionCall)

	// deliverResult sends a locally produced function result back over the
	// signaling channel, through the same path application results take.
	deliverResult func(callID string, result map[string]any)

	debug bool
}

// dispatch handles one raw inbound event. Malformed payloads and
// unrecognized types are dropped; a bad event never ends the session.
func (r *router) dispatch(raw []byte) {
	var event serverEvent
	if err := json.Unmarshal(raw, &event); err != nil || event.Type == "" {
		log.Debug("dropping malformed signaling event", "err", err)
		return
	}

	switch event.Type {
	case typeInputTranscriptDone:
		if r.onTranscript != nil {
			r.onTranscript(event.Transcript)
		}

	case typeResponseTranscriptDelta:
		if r.onResponse != nil {
			r.onResponse(event.Delta, false)
		}

	case typeResponseTranscriptDone:
		if r.onResponse != nil {
			r.onResponse(event.Transcript, true)
		}

	case typeOutputItemDone:
		if event.Item == nil || event.Item.Type != itemFunctionCall {
			return
		}
		r.handleFunctionCall(event.Item)

	default:
		if r.debug {
			log.Debug("ignoring signaling event", "type", event.Type)
		}
	}
}

func (r *router) handleFunctionCall(item *serverItem) {
	args := map[string]any{}
	if item.Arguments != "" {
		if err := json.Unmarshal([]byte(item.Arguments), &args); err != nil {
			args = map[string]any{}
		}
	}

	if result, handled := r.device.tryHandle(item.Name, args); handled {
		log.Debug("function call handled locally", "name", item.Name)
		if r.deliverResult != nil {
			r.deliverResult(item.CallID, result)
		}
		return
	}

	if r.onFunctionCall != nil {
		r.onFunctionCall(FunctionCall{
			Name:      item.Name,
			Arguments: args,
			CallID:    item.CallID,
		})
	}
}
