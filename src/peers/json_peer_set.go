package peers

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"sync"

	"github.com/ugorji/go/codec"
)

const jsonPeerSetPath = "peers.json"

// JSONPeerSet is used to provide peer persistence on disk in the form of a JSON
// file. The file lists the seed peers of the node.
type JSONPeerSet struct {
	l    sync.Mutex
	path string
}

// NewJSONPeerSet creates a new JSONPeerSet with reference to a base directory
// where the JSON file resides.
func NewJSONPeerSet(base string) *JSONPeerSet {
	return &JSONPeerSet{
		path: filepath.Join(base, jsonPeerSetPath),
	}
}

// Path ...
func (j *JSONPeerSet) Path() string {
	return j.path
}

// Peers parses the underlying JSON file and returns the peers it contains.
func (j *JSONPeerSet) Peers() ([]*Peer, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for no peers
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, nil
	}

	// Decode the peers
	var peers []*Peer
	dec := codec.NewDecoderBytes(buf, new(codec.JsonHandle))
	if err := dec.Decode(&peers); err != nil {
		return nil, err
	}

	return peers, nil
}

// Write persists peers to the JSON file.
func (j *JSONPeerSet) Write(peers []*Peer) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &codec.JsonHandle{Indent: 2})
	if err := enc.Encode(peers); err != nil {
		return err
	}

	// Write out as JSON
	return ioutil.WriteFile(j.path, buf, 0644)
}
