package grpc

import (
	"github.com/dmitrijs2005/hireledger/internal/codec"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype HiringService speaks:
// application/grpc+cbor. Messages are deterministic CBOR keyed by their
// json field names.
const CodecName = "cbor"

type cborCodec struct{}

func (cborCodec) Marshal(v any) ([]byte, error)      { return codec.Marshal(v) }
func (cborCodec) Unmarshal(data []byte, v any) error { return codec.Unmarshal(data, v) }
func (cborCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(cborCodec{})
}
