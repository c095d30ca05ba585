package node

import (
	"testing"

	"github.com/mosaicnetworks/courier/src/net"
	"github.com/mosaicnetworks/courier/src/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePeerAuth(t *testing.T) {
	h := newHarness(t)

	p := peers.NewPeer("10.0.0.5", 5000)

	var resp net.UpdatePeerResponse
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey: "wrong",
		Peer:    p,
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Unable to access internal function - Incorrect authKey", resp.Message)

	resp = net.UpdatePeerResponse{}
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{Peer: p}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing required property: authKey", resp.Message)

	_, ok := h.registry.Get(p.String())
	assert.False(t, ok)
}

func TestUpdatePeerShapeCheckedBeforeAuth(t *testing.T) {
	h := newHarness(t)

	var resp net.UpdatePeerResponse
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey:    "wrong",
		UpdateType: 7,
	}, &resp))
	assert.False(t, resp.Success)
	assert.NotEqual(t, incorrectAuthKey, resp.Message)
	assert.Contains(t, resp.Message, "UpdatePeerRequest.Peer failed on required")
	assert.Contains(t, resp.Message, "UpdatePeerRequest.UpdateType failed on max")
}

func TestUpdatePeerInsertRemove(t *testing.T) {
	h := newHarness(t)

	p := peers.NewPeer("10.0.0.5", 5000)
	p.Nonce = "abc"

	var resp net.UpdatePeerResponse
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey:    h.conf.AuthKey,
		UpdateType: net.UpdateTypeInsert,
		Peer:       p,
	}, &resp))
	assert.True(t, resp.Success, resp.Message)

	_, ok := h.registry.Get(p.String())
	assert.True(t, ok)

	self := peers.NewPeer("10.0.0.6", 5000)
	self.Nonce = h.conf.Nonce

	resp = net.UpdatePeerResponse{}
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey: h.conf.AuthKey,
		Peer:    self,
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, peers.CodeNotAccepted, resp.Code)

	resp = net.UpdatePeerResponse{}
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey:    h.conf.AuthKey,
		UpdateType: net.UpdateTypeRemove,
		Peer:       p,
	}, &resp))
	assert.True(t, resp.Success, resp.Message)

	resp = net.UpdatePeerResponse{}
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey:    h.conf.AuthKey,
		UpdateType: net.UpdateTypeRemove,
		Peer:       p,
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, peers.CodeNotOnList, resp.Code)
	assert.Equal(t, "4203: Peer is not on the peers list", resp.Message)
}

func TestUpdatePeerInvalidType(t *testing.T) {
	h := newHarness(t)

	var resp net.UpdatePeerResponse
	require.NoError(t, h.client.UpdatePeer(nodeAddr, &net.UpdatePeerRequest{
		AuthKey:    h.conf.AuthKey,
		UpdateType: 7,
		Peer:       peers.NewPeer("10.0.0.5", 5000),
	}, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 0, resp.Code)
}
