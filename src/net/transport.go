package net

// Transport provides an interface for network transports
// to allow a node to communicate with other nodes.
type Transport interface {

	// Starts the transport listening
	Listen()

	// Consumer returns a channel that can be used to
	// consume and respond to RPC requests.
	Consumer() <-chan RPC

	// LocalAddr is used to return our local address
	LocalAddr() string

	// AdvertiseAddr is used to return our advertise address where other peers
	// can reach us
	AdvertiseAddr() string

	// The following methods send the appropriate RPC to the target node.

	PostTransactions(target string, args *PostTransactionsRequest, resp *PostTransactionsResponse) error

	PostSignatures(target string, args *PostSignaturesRequest, resp *PostSignaturesResponse) error

	PostBlock(target string, args *PostBlockRequest, resp *PostBlockResponse) error

	Blocks(target string, args *BlocksRequest, resp *BlocksResponse) error

	BlocksCommon(target string, args *BlocksCommonRequest, resp *BlocksCommonResponse) error

	GetSignatures(target string, args *GetSignaturesRequest, resp *GetSignaturesResponse) error

	GetTransactions(target string, args *GetTransactionsRequest, resp *GetTransactionsResponse) error

	List(target string, args *ListRequest, resp *ListResponse) error

	Height(target string, args *HeightRequest, resp *HeightResponse) error

	Status(target string, args *StatusRequest, resp *StatusResponse) error

	UpdatePeer(target string, args *UpdatePeerRequest, resp *UpdatePeerResponse) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}

// Notifier publishes change events to public subscribers.
type Notifier interface {
	Emit(event string, data interface{})
}
