package chain

import (
	"encoding/binary"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// IDFromBytes derives a numeric identifier from the canonical bytes of an
// object.
func IDFromBytes(data []byte) string {
	hash := chainhash.HashB(data)
	return strconv.FormatUint(binary.LittleEndian.Uint64(hash[:8]), 10)
}

// Hash returns the SHA256 digest of data.
func Hash(data []byte) []byte {
	return chainhash.HashB(data)
}
