package node

import (
	"sync"
	"testing"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSignatureDuplicate(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)

	tx := multisigTx(bob)
	require.NoError(t, h.pool.ProcessUnconfirmedTransaction(tx, false))

	sig := &chain.Signature{TransactionID: tx.ID, PublicKey: bob, Signature: chain.TestSignature("bob")}

	var resp net.PostSignaturesResponse
	require.NoError(t, h.client.PostSignatures(nodeAddr, &net.PostSignaturesRequest{Signature: sig}, &resp))
	assert.True(t, resp.Success, resp.Message)

	resp = net.PostSignaturesResponse{}
	require.NoError(t, h.client.PostSignatures(nodeAddr, &net.PostSignaturesRequest{Signature: sig}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Error processing signature: Permission to sign transaction denied", resp.Message)

	assert.Equal(t, 1, h.notifier.Count(SignatureChange))
	assert.Equal(t, 1, h.node.Broadcaster().QueueLen())
}

func TestPostSignaturesBatch(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)

	tx := multisigTx(bob, carol)
	require.NoError(t, h.pool.ProcessUnconfirmedTransaction(tx, false))

	bobSig := &chain.Signature{TransactionID: tx.ID, PublicKey: bob, Signature: chain.TestSignature("bob")}
	carolSig := &chain.Signature{TransactionID: tx.ID, PublicKey: carol, Signature: chain.TestSignature("carol")}

	var resp net.PostSignaturesResponse
	require.NoError(t, h.client.PostSignatures(nodeAddr, &net.PostSignaturesRequest{
		Signatures: []*chain.Signature{bobSig, bobSig, carolSig},
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Error processing signature: Permission to sign transaction denied", resp.Message)

	var sigs net.GetSignaturesResponse
	require.NoError(t, h.client.GetSignatures(nodeAddr, &net.GetSignaturesRequest{}, &sigs))
	require.Len(t, sigs.Signatures, 1)
	assert.Equal(t, tx.ID, sigs.Signatures[0].Transaction)
	assert.Equal(t, []string{chain.TestSignature("bob")}, sigs.Signatures[0].Signatures)

	resp = net.PostSignaturesResponse{}
	require.NoError(t, h.client.PostSignatures(nodeAddr, &net.PostSignaturesRequest{
		Signatures: []*chain.Signature{{TransactionID: "x"}},
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid signature body", resp.Message)
}

func TestPostSignaturesTooMany(t *testing.T) {
	h := newHarness(t)
	h.conf.MaxSharedTxs = 1

	sig := &chain.Signature{TransactionID: "1", PublicKey: bob, Signature: chain.TestSignature("bob")}

	var resp net.PostSignaturesResponse
	require.NoError(t, h.client.PostSignatures(nodeAddr, &net.PostSignaturesRequest{
		Signatures: []*chain.Signature{sig, sig},
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid signatures body", resp.Message)
}

func TestPostTransactionPublic(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)

	tx := chain.NewTestTransaction(alice, "1L", 10, 1, 1)

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: tx}, &resp))
	assert.True(t, resp.Success, resp.Message)
	assert.Equal(t, tx.ID, resp.TransactionID)

	assert.True(t, h.pool.TransactionInPool(tx.ID))
	assert.Equal(t, uint64(89), h.pool.Balance(alice))
	assert.Equal(t, 1, h.notifier.Count(TransactionsChange))
	assert.Equal(t, 1, h.node.Broadcaster().QueueLen())

	resp = net.PostTransactionsResponse{}
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: tx}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Transaction is already processed: "+tx.ID, resp.Message)
}

func TestPostTransactionInvalidPenalizes(t *testing.T) {
	h := newHarness(t)
	remote := h.addRemote(t)

	tx := chain.NewTestTransaction(alice, "1L", 10, 1, 1)
	tx.Amount = 1000

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{
		Peer:            remote,
		Transaction:     tx,
		ExtraLogMessage: "tampered",
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid transaction body", resp.Message)
	assert.Equal(t, []string{remote.String()}, h.registry.Removed())
}

func TestReceiveTransactionsSkipsMissing(t *testing.T) {
	h := newHarness(t)
	remote := h.addRemote(t)
	h.pool.Credit(alice, 100)

	tx1 := chain.NewTestTransaction(alice, "1L", 10, 1, 1)
	tx3 := chain.NewTestTransaction(alice, "1L", 10, 1, 3)

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{
		Peer:         remote,
		Transactions: []*chain.Transaction{tx1, nil, tx3},
	}, &resp))

	assert.True(t, resp.Success, resp.Message)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, net.TransactionResult{TransactionID: tx1.ID, Success: true}, resp.Results[0])
	assert.Equal(t, net.TransactionResult{Message: "Unable to process signature. Signature is undefined."}, resp.Results[1])
	assert.Equal(t, net.TransactionResult{TransactionID: tx3.ID, Success: true}, resp.Results[2])

	pooled := h.pool.GetMergedTransactionList(false, 10)
	require.Len(t, pooled, 2)
	for _, tx := range pooled {
		assert.True(t, tx.Bundled)
	}

	assert.Empty(t, h.registry.Removed())
}

func TestReceiveTransactionsStopsOnFailure(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 15)

	tx1 := chain.NewTestTransaction(alice, "1L", 10, 1, 1)
	tx2 := chain.NewTestTransaction(alice, "1L", 10, 1, 2)
	tx3 := chain.NewTestTransaction(alice, "1L", 1, 1, 3)

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{
		Transactions: []*chain.Transaction{tx1, tx2, tx3},
	}, &resp))

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Account does not have enough LSK")
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)

	assert.True(t, h.pool.TransactionInPool(tx1.ID))
	assert.False(t, h.pool.TransactionInPool(tx2.ID))
	assert.False(t, h.pool.TransactionInPool(tx3.ID))
}

func TestPostTransactionsBatchWinsOverSingle(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)

	tx1 := chain.NewTestTransaction(alice, "1L", 10, 1, 1)
	tx2 := chain.NewTestTransaction(alice, "1L", 10, 1, 2)

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{
		Transaction:  tx1,
		Transactions: []*chain.Transaction{tx2},
	}, &resp))

	assert.True(t, resp.Success, resp.Message)
	assert.Empty(t, resp.TransactionID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, tx2.ID, resp.Results[0].TransactionID)

	assert.True(t, h.pool.TransactionInPool(tx2.ID))
	assert.False(t, h.pool.TransactionInPool(tx1.ID))
}

func TestBalanceSequence(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)
	h.pool.ProcessDelay = 20 * time.Millisecond

	txs := []*chain.Transaction{
		chain.NewTestTransaction(alice, "1L", 60, 10, 1),
		chain.NewTestTransaction(alice, "1L", 60, 10, 2),
	}

	var wg sync.WaitGroup
	resps := make([]net.PostTransactionsResponse, len(txs))
	for i, tx := range txs {
		wg.Add(1)
		go func(i int, tx *chain.Transaction) {
			defer wg.Done()
			err := h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: tx}, &resps[i])
			assert.NoError(t, err)
		}(i, tx)
	}
	wg.Wait()

	accepted := 0
	for _, r := range resps {
		if r.Success {
			accepted++
		} else {
			assert.Contains(t, r.Message, "Account does not have enough LSK")
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, uint64(30), h.pool.Balance(alice))
}

func TestRelayLimitStopsRelaying(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)

	exhausted := chain.NewTestTransaction(alice, "1L", 1, 1, 1)
	exhausted.Relays = 3

	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: exhausted}, &resp))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 0, h.node.Broadcaster().QueueLen())
	assert.Equal(t, 0, h.notifier.Count(TransactionsChange))

	fresh := chain.NewTestTransaction(alice, "1L", 1, 1, 2)
	fresh.Relays = 2

	resp = net.PostTransactionsResponse{}
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: fresh}, &resp))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 1, h.node.Broadcaster().QueueLen())
	assert.Equal(t, 1, h.notifier.Count(TransactionsChange))
}

func TestReleaseRelaysToPeers(t *testing.T) {
	h := newHarness(t)
	h.pool.Credit(alice, 100)
	_, peerTrans := h.addPeer(t, "10.0.0.2", 5000)

	tx := chain.NewTestTransaction(alice, "1L", 1, 1, 1)
	var resp net.PostTransactionsResponse
	require.NoError(t, h.client.PostTransactions(nodeAddr, &net.PostTransactionsRequest{Transaction: tx}, &resp))
	require.True(t, resp.Success, resp.Message)

	done := make(chan struct{})
	go func() {
		h.node.Broadcaster().Release()
		close(done)
	}()

	select {
	case rpc := <-peerTrans.Consumer():
		cmd, ok := rpc.Command.(*net.PostTransactionsRequest)
		require.True(t, ok)
		require.Len(t, cmd.Transactions, 1)
		assert.Equal(t, tx.ID, cmd.Transactions[0].ID)
		assert.Equal(t, 1, cmd.Transactions[0].Relays)
		require.NotNil(t, cmd.Peer)
		assert.Equal(t, h.conf.Nonce, cmd.Peer.Nonce)
		assert.Equal(t, nodeAddr, cmd.Peer.String())
		rpc.Respond(&net.PostTransactionsResponse{Success: true}, nil)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for relayed transactions")
	}

	<-done
	assert.Empty(t, h.registry.Removed())
}

func TestPostBlockMalformed(t *testing.T) {
	h := newHarness(t)
	remote := h.addRemote(t)

	var resp net.PostBlockResponse
	require.NoError(t, h.client.PostBlock(nodeAddr, &net.PostBlockRequest{
		Peer:  remote,
		Block: []byte("not a block"),
	}, &resp))

	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, []string{remote.String()}, h.registry.Removed())
	assert.Equal(t, int32(0), h.bus.received)
}

func TestPostBlockTampered(t *testing.T) {
	h := newHarness(t)
	remote := h.addRemote(t)

	block := buildChain(t, 1)[0]
	block.Reward = 100
	data, err := chain.EncodeBlock(block)
	require.NoError(t, err)

	var resp net.PostBlockResponse
	require.NoError(t, h.client.PostBlock(nodeAddr, &net.PostBlockRequest{Peer: remote, Block: data}, &resp))

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid block id", resp.Message)
	assert.Equal(t, []string{remote.String()}, h.registry.Removed())
	assert.Equal(t, int32(0), h.bus.received)
}

func TestPostBlockAccepted(t *testing.T) {
	h := newHarness(t)

	block := buildChain(t, 1)[0]
	data, err := chain.EncodeBlock(block)
	require.NoError(t, err)

	var resp net.PostBlockResponse
	require.NoError(t, h.client.PostBlock(nodeAddr, &net.PostBlockRequest{Block: data}, &resp))

	assert.True(t, resp.Success, resp.Message)
	assert.Equal(t, block.ID, resp.BlockID)
	assert.Equal(t, int32(1), h.bus.received)
	assert.Equal(t, int64(1), h.store.Height())
	assert.Equal(t, int64(1), h.system.Height())
	assert.Equal(t, 1, h.notifier.Count(BlocksChange))
	assert.Empty(t, h.registry.Removed())
}

func TestPenalizeFrozenPeer(t *testing.T) {
	h := newHarness(t)

	seed := peers.NewPeer("10.0.0.9", 5000)
	h.registry.PeerSet = peers.NewPeerSet([]*peers.Peer{seed}, h.conf.Nonce)

	var resp net.PostBlockResponse
	require.NoError(t, h.client.PostBlock(nodeAddr, &net.PostBlockRequest{Peer: seed, Block: []byte{0x01}}, &resp))
	assert.False(t, resp.Success)

	_, ok := h.registry.Get(seed.String())
	assert.True(t, ok)
	assert.Empty(t, h.registry.Removed())
}
