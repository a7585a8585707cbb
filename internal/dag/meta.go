package dag

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrCorruptMeta = errors.New("dag: corrupt chunk meta")

// Meta is stored as a protobuf message with one repeated string field.
const metaRefField protowire.Number = 1

func encodeMeta(refs []Hash) []byte {
	var b []byte
	for _, r := range refs {
		b = protowire.AppendTag(b, metaRefField, protowire.BytesType)
		b = protowire.AppendString(b, string(r))
	}
	return b
}

func decodeMeta(b []byte) ([]Hash, error) {
	var refs []Hash
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorruptMeta, protowire.ParseError(n))
		}
		b = b[n:]
		if num != metaRefField || typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: unexpected field %d (type %d)", ErrCorruptMeta, num, typ)
		}
		s, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrCorruptMeta, protowire.ParseError(n))
		}
		b = b[n:]
		h, err := ParseHash(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptMeta, err)
		}
		refs = append(refs, h)
	}
	return refs, nil
}
