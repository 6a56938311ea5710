package protocol

// JoinRequest is sent by a viewer after connecting.
type JoinRequest struct {
	Version     string
	WireVersion uint8
	Name        string
}

// JoinAccepted is sent by the server before the baseline frame.
type JoinAccepted struct {
	ServerName     string
	TickRate       int
	InterpWindowMs float64
}

// JoinRejected is sent by the server when a viewer's join request is rejected.
type JoinRejected struct {
	Reason string
}
