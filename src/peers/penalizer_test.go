package peers

import (
	"testing"

	"github.com/mosaicnetworks/courier/src/common"
)

func TestPenalizerRemovePeer(t *testing.T) {
	seeds := testPeers(1, Connected)
	ps := NewPeerSet(seeds, "")

	bad := NewPeer("10.9.9.9", 7000)
	ps.Update(bad)

	pen := NewPenalizer(ps, common.NewTestEntry(t, common.TestLogLevel))

	if pen.RemovePeer(nil, EBLOCK, "") {
		t.Fatalf("nil peer should not be removed")
	}
	if pen.RemovePeer(seeds[0], ECOMMON, "") {
		t.Fatalf("frozen peer should not be removed")
	}
	if !pen.RemovePeer(bad, ETRANSACTION, "Received transaction 1 from peer") {
		t.Fatalf("peer should be removed")
	}
	if _, ok := ps.Get(bad.String()); ok {
		t.Fatalf("peer still in registry")
	}
	if ps.Len() != 1 {
		t.Fatalf("expected 1 peer left, got %d", ps.Len())
	}
}
