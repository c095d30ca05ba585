package net

import "fmt"

const (
	rpcPostTransactions uint8 = iota
	rpcPostSignatures
	rpcPostBlock
	rpcBlocks
	rpcBlocksCommon
	rpcGetSignatures
	rpcGetTransactions
	rpcList
	rpcHeight
	rpcStatus
	rpcUpdatePeer
)

// Procedure names, as exposed by the WAMP transport and used as broadcast
// api names.
const (
	PostTransactions = "postTransactions"
	PostSignatures   = "postSignatures"
	PostBlock        = "postBlock"
	Blocks           = "blocks"
	BlocksCommon     = "blocksCommon"
	GetSignatures    = "getSignatures"
	GetTransactions  = "getTransactions"
	List             = "list"
	Height           = "height"
	Status           = "status"
	UpdatePeer       = "updatePeer"
)

var procedureNames = []string{
	rpcPostTransactions: PostTransactions,
	rpcPostSignatures:   PostSignatures,
	rpcPostBlock:        PostBlock,
	rpcBlocks:           Blocks,
	rpcBlocksCommon:     BlocksCommon,
	rpcGetSignatures:    GetSignatures,
	rpcGetTransactions:  GetTransactions,
	rpcList:             List,
	rpcHeight:           Height,
	rpcStatus:           Status,
	rpcUpdatePeer:       UpdatePeer,
}

// newCommand returns a pointer to an empty request of the given type, ready
// to be decoded into.
func newCommand(rpcType uint8) (interface{}, error) {
	switch rpcType {
	case rpcPostTransactions:
		return &PostTransactionsRequest{}, nil
	case rpcPostSignatures:
		return &PostSignaturesRequest{}, nil
	case rpcPostBlock:
		return &PostBlockRequest{}, nil
	case rpcBlocks:
		return &BlocksRequest{}, nil
	case rpcBlocksCommon:
		return &BlocksCommonRequest{}, nil
	case rpcGetSignatures:
		return &GetSignaturesRequest{}, nil
	case rpcGetTransactions:
		return &GetTransactionsRequest{}, nil
	case rpcList:
		return &ListRequest{}, nil
	case rpcHeight:
		return &HeightRequest{}, nil
	case rpcStatus:
		return &StatusRequest{}, nil
	case rpcUpdatePeer:
		return &UpdatePeerRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown rpc type %d", rpcType)
	}
}

// rpcTypeOf maps a procedure name back to its rpc type.
func rpcTypeOf(name string) (uint8, bool) {
	for t, n := range procedureNames {
		if n == name {
			return uint8(t), true
		}
	}
	return 0, false
}
