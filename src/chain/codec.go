package chain

import (
	"bytes"
	"reflect"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

var msgpackHandle = newMsgpackHandle()

func newMsgpackHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)
	mh.RawToString = true
	mh.WriteExt = true
	mh.Canonical = true
	mh.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return mh
}

// MsgpackHandle returns the codec handle used for every binary encoding in
// the node.
func MsgpackHandle() *codec.MsgpackHandle {
	return msgpackHandle
}

// Marshal encodes v with msgpack.
func Marshal(v interface{}) ([]byte, error) {
	var b bytes.Buffer
	enc := codec.NewEncoder(&b, msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "msgpack encode")
	}
	return b.Bytes(), nil
}

// Unmarshal decodes msgpack data into v.
func Unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, msgpackHandle)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "msgpack decode")
	}
	return nil
}

// EncodeBlock returns the binary payload carried by postBlock.
func EncodeBlock(b *Block) ([]byte, error) {
	if b == nil {
		return nil, errors.New("nil block")
	}
	return Marshal(b)
}

// DecodeBlock parses a postBlock payload.
func DecodeBlock(data []byte) (*Block, error) {
	if len(data) == 0 {
		return nil, errors.New("empty block payload")
	}
	var b Block
	if err := Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(err, "decode block")
	}
	return &b, nil
}
