package realtime

import (
	"reflect"
	"testing"
)

type routerRecorder struct {
	transcripts []string
	deltas      []string
	finals      []string
	calls       []FunctionCall
	results     []map[string]any
	resultIDs   []string
}

func newTestRouter(media *mediaSession) (*router, *routerRecorder) {
	rec := &routerRecorder{}
	r := &router{
		device:       &deviceControls{media: media},
		onTranscript: func(text string) { rec.transcripts = append(rec.transcripts, text) },
		onResponse: func(text string, done bool) {
			if done {
				rec.finals = append(rec.finals, text)
			} else {
				rec.deltas = append(rec.deltas, text)
			}
		},
		onFunctionCall: func(call FunctionCall) { rec.calls = append(rec.calls, call) },
		deliverResult: func(callID string, result map[string]any) {
			rec.resultIDs = append(rec.resultIDs, callID)
			rec.results = append(rec.results, result)
		},
	}
	return r, rec
}

func TestDispatchTranscript(t *testing.T) {
	r, rec := newTestRouter(nil)

	r.dispatch([]byte(`{"type":"conversation.item.input_audio_transcription.completed","transcript":"turn it down"}`))

	if len(rec.transcripts) != 1 || rec.transcripts[0] != "turn it down" {
		t.Errorf("transcripts = %v, want [turn it down]", rec.transcripts)
	}
}

func TestDispatchResponseDeltaAndDone(t *testing.T) {
	r, rec := newTestRouter(nil)

	r.dispatch([]byte(`{"type":"response.audio_transcript.delta","delta":"Sure, "}`))
	r.dispatch([]byte(`{"type":"response.audio_transcript.delta","delta":"lowering it."}`))
	r.dispatch([]byte(`{"type":"response.audio_transcript.done","transcript":"Sure, lowering it."}`))

	if want := []string{"Sure, ", "lowering it."}; !reflect.DeepEqual(rec.deltas, want) {
		t.Errorf("deltas = %v, want %v", rec.deltas, want)
	}
	if len(rec.finals) != 1 || rec.finals[0] != "Sure, lowering it." {
		t.Errorf("finals = %v", rec.finals)
	}
}

func TestDispatchDropsMalformedAndUnknown(t *testing.T) {
	r, rec := newTestRouter(nil)

	r.dispatch([]byte(`{not json`))
	r.dispatch([]byte(`{}`))
	r.dispatch([]byte(`{"type":"session.created"}`))
	r.dispatch([]byte(`{"type":"response.audio.delta","delta":"ignored"}`))

	if len(rec.transcripts)+len(rec.deltas)+len(rec.finals)+len(rec.calls) != 0 {
		t.Errorf("unexpected callbacks: %+v", rec)
	}
}

func TestDispatchFunctionCallHandledLocally(t *testing.T) {
	r, rec := newTestRouter(boundMedia())

	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"function_call","name":"set_device_volume","call_id":"call_42","arguments":"{\"volume_level\":25}"}}`))

	if len(rec.calls) != 0 {
		t.Errorf("device call leaked to application: %v", rec.calls)
	}
	if len(rec.results) != 1 {
		t.Fatalf("results = %d, want 1", len(rec.results))
	}
	if rec.resultIDs[0] != "call_42" {
		t.Errorf("call_id = %q, want call_42", rec.resultIDs[0])
	}
	if rec.results[0]["volume"] != 25 || rec.results[0]["success"] != true {
		t.Errorf("result = %v", rec.results[0])
	}
}

func TestDispatchFunctionCallForwarded(t *testing.T) {
	r, rec := newTestRouter(boundMedia())

	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"function_call","name":"order_pizza","call_id":"call_7","arguments":"{\"size\":\"large\"}"}}`))

	if len(rec.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(rec.calls))
	}
	call := rec.calls[0]
	if call.Name != "order_pizza" || call.CallID != "call_7" {
		t.Errorf("call = %+v", call)
	}
	if call.Arguments["size"] != "large" {
		t.Errorf("arguments = %v", call.Arguments)
	}
}

func TestDispatchFunctionCallDeviceFallsThroughWithoutPlayback(t *testing.T) {
	// A recognized device function whose precondition fails belongs to the
	// application, not the floor.
	r, rec := newTestRouter(&mediaSession{volume: 1.0})

	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"function_call","name":"set_device_volume","call_id":"call_9","arguments":"{\"volume_level\":80}"}}`))

	if len(rec.results) != 0 {
		t.Errorf("unexpected local result: %v", rec.results)
	}
	if len(rec.calls) != 1 || rec.calls[0].Name != "set_device_volume" {
		t.Errorf("calls = %v, want forwarded set_device_volume", rec.calls)
	}
}

func TestDispatchFunctionCallMalformedArguments(t *testing.T) {
	r, rec := newTestRouter(nil)

	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"function_call","name":"do_thing","call_id":"call_1","arguments":"{broken"}}`))
	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"function_call","name":"do_other","call_id":"call_2"}}`))

	if len(rec.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(rec.calls))
	}
	for _, call := range rec.calls {
		if call.Arguments == nil || len(call.Arguments) != 0 {
			t.Errorf("arguments for %s = %v, want empty map", call.Name, call.Arguments)
		}
	}
}

func TestDispatchOutputItemNonFunctionIgnored(t *testing.T) {
	r, rec := newTestRouter(nil)

	r.dispatch([]byte(`{"type":"response.output_item.done","item":{"type":"message"}}`))
	r.dispatch([]byte(`{"type":"response.output_item.done"}`))

	if len(rec.calls) != 0 || len(rec.results) != 0 {
		t.Errorf("unexpected dispatch: %+v", rec)
	}
}
