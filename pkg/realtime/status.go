package realtime

// Status is the connection state of a client. It only moves
// disconnected -> connecting -> connected -> disconnected, with the
// shortcut connecting -> disconnected on any handshake failure.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// String returns the status name.
func (s Status) String() string { return string(s) }
