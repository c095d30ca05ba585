package net

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/common"
	"github.com/mosaicnetworks/courier/src/peers"
)

const (
	INMEM = iota
	TCP
	WAMP
	numTestTransports // NOTE: must be last
)

func NewTestTransport(ttype int, t *testing.T) Transport {
	switch ttype {
	case INMEM:
		_, it := NewInmemTransport("")
		return it
	case TCP:
		tt, err := NewTCPTransport("127.0.0.1:0", "", 2, 0, time.Second, common.NewTestEntry(t, common.TestLogLevel))
		if err != nil {
			t.Fatal(err)
		}
		go tt.Listen()
		return tt
	case WAMP:
		wt, err := NewWAMPTransport("127.0.0.1:0", "", "courier", time.Second, common.NewTestEntry(t, common.TestLogLevel))
		if err != nil {
			t.Fatal(err)
		}
		go wt.Listen()
		return wt
	default:
		panic("Unknown transport type")
	}
}

// newTestPair returns a consumer transport and a caller transport able to
// reach it.
func newTestPair(ttype int, t *testing.T) (Transport, Transport) {
	trans1 := NewTestTransport(ttype, t)
	trans2 := NewTestTransport(ttype, t)

	if ttype == INMEM {
		itrans1 := trans1.(*InmemTransport)
		itrans2 := trans2.(*InmemTransport)
		itrans1.Connect(itrans2.LocalAddr(), itrans2)
		itrans2.Connect(itrans1.LocalAddr(), itrans1)
	}

	return trans1, trans2
}

// serveOne answers the next RPC on trans with resp/respErr after checking the
// command with check.
func serveOne(t *testing.T, trans Transport, check func(cmd interface{}), resp interface{}, respErr error) {
	go func() {
		select {
		case rpc := <-trans.Consumer():
			check(rpc.Command)
			rpc.Respond(resp, respErr)
		case <-time.After(2 * time.Second):
			t.Errorf("timeout")
		}
	}()
}

func TestTransport_StartStop(t *testing.T) {
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans := NewTestTransport(ttype, t)
		if err := trans.Close(); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
}

func TestTransport_PostBlock(t *testing.T) {
	block, err := chain.NewBlock(nil, 1, chain.TestPublicKey("g"), chain.TestSignature("g"), nil)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := chain.EncodeBlock(block)
	if err != nil {
		t.Fatal(err)
	}

	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans1, trans2 := newTestPair(ttype, t)

		sender := peers.NewPeer("10.0.0.1", 7000)
		sender.State = peers.Connected
		sender.Nonce = "n1"

		args := PostBlockRequest{
			Peer:  sender,
			Block: payload,
		}
		resp := PostBlockResponse{
			Success: true,
			BlockID: block.ID,
		}

		serveOne(t, trans1, func(cmd interface{}) {
			req, ok := cmd.(*PostBlockRequest)
			if !ok {
				t.Errorf("ttype %d: unexpected command %T", ttype, cmd)
				return
			}
			if !reflect.DeepEqual(req, &args) {
				t.Errorf("ttype %d: command mismatch: %#v %#v", ttype, *req, args)
			}
		}, &resp, nil)

		var out PostBlockResponse
		if err := trans2.PostBlock(trans1.AdvertiseAddr(), &args, &out); err != nil {
			t.Fatalf("ttype %d: err: %v", ttype, err)
		}

		if !reflect.DeepEqual(resp, out) {
			t.Fatalf("ttype %d: response mismatch: %#v %#v", ttype, resp, out)
		}

		trans2.Close()
		trans1.Close()
	}
}

func TestTransport_PostTransactions(t *testing.T) {
	txs := []*chain.Transaction{
		chain.NewTestTransaction(chain.TestPublicKey("alice"), "1L", 10, 1, 100),
		chain.NewTestTransaction(chain.TestPublicKey("bob"), "2L", 20, 1, 101),
	}

	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans1, trans2 := newTestPair(ttype, t)

		args := PostTransactionsRequest{
			Transactions: txs,
		}
		resp := PostTransactionsResponse{
			Success: true,
			Results: []TransactionResult{
				{TransactionID: txs[0].ID, Success: true},
				{TransactionID: txs[1].ID, Success: false, Message: "Account does not have enough LSK"},
			},
		}

		serveOne(t, trans1, func(cmd interface{}) {
			req, ok := cmd.(*PostTransactionsRequest)
			if !ok {
				t.Errorf("ttype %d: unexpected command %T", ttype, cmd)
				return
			}
			if len(req.Transactions) != 2 || req.Transactions[1].ID != txs[1].ID {
				t.Errorf("ttype %d: bad transactions %#v", ttype, req.Transactions)
			}
		}, &resp, nil)

		var out PostTransactionsResponse
		if err := trans2.PostTransactions(trans1.AdvertiseAddr(), &args, &out); err != nil {
			t.Fatalf("ttype %d: err: %v", ttype, err)
		}

		if !reflect.DeepEqual(resp, out) {
			t.Fatalf("ttype %d: response mismatch: %#v %#v", ttype, resp, out)
		}

		trans2.Close()
		trans1.Close()
	}
}

func TestTransport_ErrorResponse(t *testing.T) {
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans1, trans2 := newTestPair(ttype, t)

		args := HeightRequest{}

		serveOne(t, trans1, func(cmd interface{}) {
			if _, ok := cmd.(*HeightRequest); !ok {
				t.Errorf("ttype %d: unexpected command %T", ttype, cmd)
			}
		}, nil, common.NewErr(common.ApplicationError, "unexpected command"))

		var out HeightResponse
		err := trans2.Height(trans1.AdvertiseAddr(), &args, &out)
		if err == nil || !strings.Contains(err.Error(), "unexpected command") {
			t.Fatalf("ttype %d: expected error, got %v", ttype, err)
		}

		trans2.Close()
		trans1.Close()
	}
}

func TestTransport_UnknownTarget(t *testing.T) {
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans := NewTestTransport(ttype, t)

		var out StatusResponse
		if err := trans.Status("127.0.0.1:1", &StatusRequest{}, &out); err == nil {
			t.Fatalf("ttype %d: expected error", ttype)
		}

		trans.Close()
	}
}
