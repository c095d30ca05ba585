package chain

// Relayable is implemented by every object the broadcaster re-announces. The
// relay count travels with the object and grows by one per hop.
type Relayable interface {
	RelayCount() int
	IncRelays()
}
