package peers

import "fmt"

// Failure codes returned by registry mutations.
const (
	CodeInvalidPeer       = 4201
	CodeNotOnList         = 4203
	CodeFrozenPeer        = 4204
	CodeInsertOnlyFailure = 4205
	CodeNotAccepted       = 4206
	CodeNonceExists       = 4207
)

var failureMessages = map[int]string{
	CodeInvalidPeer:       "Invalid peer",
	CodeNotOnList:         "Peer is not on the peers list",
	CodeFrozenPeer:        "Attempting to remove a frozen peer",
	CodeInsertOnlyFailure: "Insert only update failed - peer is already on the list",
	CodeNotAccepted:       "Peer is not accepted",
	CodeNonceExists:       "Attempting to insert a peer with a nonce that already exists",
}

// PeerUpdateError is returned when the registry refuses an update or removal.
type PeerUpdateError struct {
	Code    int
	Message string
}

// NewPeerUpdateError ...
func NewPeerUpdateError(code int) *PeerUpdateError {
	msg, ok := failureMessages[code]
	if !ok {
		msg = "Unknown peer update failure"
	}
	return &PeerUpdateError{
		Code:    code,
		Message: msg,
	}
}

// Error ...
func (e *PeerUpdateError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
