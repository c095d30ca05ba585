package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/courier/src/chain"
	"github.com/mosaicnetworks/courier/src/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnNewBlockBroadcasts(t *testing.T) {
	h := newHarness(t)
	_, peerTrans := h.addPeer(t, "10.0.0.2", 5000)

	block := buildChain(t, 1)[0]
	require.NoError(t, h.store.SaveBlock(block))

	done := make(chan struct{})
	go func() {
		h.node.OnNewBlock(block, true)
		close(done)
	}()

	select {
	case rpc := <-peerTrans.Consumer():
		cmd, ok := rpc.Command.(*net.PostBlockRequest)
		require.True(t, ok)
		received, err := chain.DecodeBlock(cmd.Block)
		require.NoError(t, err)
		assert.Equal(t, block.ID, received.ID)
		assert.Equal(t, 1, received.Relays)
		assert.Equal(t, h.system.Broadhash(), cmd.Peer.Broadhash)
		assert.Equal(t, int64(1), cmd.Peer.Height)
		rpc.Respond(&net.PostBlockResponse{Success: true, BlockID: block.ID}, nil)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for block")
	}

	<-done
	assert.Equal(t, 1, h.notifier.Count(BlocksChange))
	assert.Empty(t, h.registry.Removed())
}

func TestOnNewBlockAborts(t *testing.T) {
	h := newHarness(t)
	_, peerTrans := h.addPeer(t, "10.0.0.2", 5000)

	blocks := buildChain(t, 3)

	// not asked to broadcast
	h.node.OnNewBlock(blocks[0], false)

	assert.Equal(t, 1, h.notifier.Count(BlocksChange))

	// relays exhausted, not announced either
	blocks[1].Relays = 3
	h.node.OnNewBlock(blocks[1], true)
	assert.Equal(t, 3, blocks[1].Relays)
	assert.Equal(t, 1, h.notifier.Count(BlocksChange))

	// syncing
	h.loader.SetSyncing(true)
	h.node.OnNewBlock(blocks[2], true)
	assert.Equal(t, 1, blocks[2].Relays)

	assert.Equal(t, 0, len(peerTrans.Consumer()))
	assert.Equal(t, 2, h.notifier.Count(BlocksChange))
}

func TestOnNewBlockNoPeers(t *testing.T) {
	h := newHarness(t)

	block := buildChain(t, 1)[0]
	h.node.OnNewBlock(block, true)

	assert.Equal(t, 1, block.Relays)
	assert.Equal(t, 1, h.notifier.Count(BlocksChange))
}

func TestOnNewBlockUnreachablePeer(t *testing.T) {
	h := newHarness(t)
	remote := h.addRemote(t)

	h.node.OnNewBlock(buildChain(t, 1)[0], true)

	assert.Equal(t, []string{remote.String()}, h.registry.Removed())
}

func TestOnSignatureNoBroadcast(t *testing.T) {
	h := newHarness(t)

	sig := &chain.Signature{TransactionID: "1", PublicKey: bob}
	h.node.OnSignature(sig, false)

	assert.Equal(t, 0, sig.Relays)
	assert.Equal(t, 0, h.node.Broadcaster().QueueLen())
	assert.Equal(t, 0, h.notifier.Count(SignatureChange))

	h.node.OnSignature(sig, true)
	h.node.OnSignature(sig, true)

	assert.Equal(t, 2, sig.Relays)
	assert.Equal(t, 1, h.node.Broadcaster().QueueLen())
	assert.Equal(t, 2, h.notifier.Count(SignatureChange))
}
