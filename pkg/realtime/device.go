package realtime

import "math"

// volumeStep is the gain change applied per adjust_device_volume call.
const volumeStep = 0.10

// Device-control function names resolved locally.
const (
	fnSetDeviceVolume    = "set_device_volume"
	fnAdjustDeviceVolume = "adjust_device_volume"
	fnQuietDevice        = "quiet_device"
	fnStopAudio          = "stop_audio"
)

// deviceControls resolves the fixed set of device-control function calls
// against the session's playback path, so routine volume requests never
// round-trip through the application.
//
// A call whose precondition fails (no playback bound yet, missing or
// invalid argument) is reported as not handled and forwarded to the
// application instead, which keeps a path for application-level volume
// semantics before any media exists.
type deviceControls struct {
	media *mediaSession
}

// tryHandle resolves a function call locally. The second return value is
// false when the call is not one of the recognized names or its
// precondition failed; such calls belong to the application.
func (d *deviceControls) tryHandle(name string, args map[string]any) (map[string]any, bool) {
	switch name {
	case fnSetDeviceVolume:
		return d.setVolume(args)
	case fnAdjustDeviceVolume:
		return d.adjustVolume(args)
	case fnQuietDevice:
		return d.quiet()
	case fnStopAudio:
		return d.stopAudio()
	}
	return nil, false
}

func (d *deviceControls) setVolume(args map[string]any) (map[string]any, bool) {
	level, ok := numberArg(args, "volume_level")
	if !ok || d.media == nil || !d.media.sinkBound() {
		return nil, false
	}

	pct := int(math.Round(level))
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	d.media.setVolume(float64(pct) / 100)

	return map[string]any{"success": true, "volume": pct}, true
}

func (d *deviceControls) adjustVolume(args map[string]any) (map[string]any, bool) {
	action, _ := args["action"].(string)
	if action != "increase" && action != "decrease" {
		return nil, false
	}
	if d.media == nil || !d.media.sinkBound() {
		return nil, false
	}

	v := d.media.volumeLevel()
	if action == "increase" {
		v += volumeStep
	} else {
		v -= volumeStep
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	d.media.setVolume(v)

	return map[string]any{"success": true, "volume": int(math.Round(v * 100))}, true
}

func (d *deviceControls) quiet() (map[string]any, bool) {
	if d.media == nil || !d.media.sinkBound() {
		return nil, false
	}
	d.media.setVolume(0)
	return map[string]any{"success": true, "volume": 0}, true
}

func (d *deviceControls) stopAudio() (map[string]any, bool) {
	if d.media != nil && d.media.pausePlayback() {
		return map[string]any{"success": true, "message": "Audio stopped"}, true
	}
	return map[string]any{"success": true, "message": "No audio was playing"}, true
}

// numberArg extracts a numeric argument from a decoded JSON object.
func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}
