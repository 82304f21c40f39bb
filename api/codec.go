package api

import (
	"encoding/json"
	"fmt"

	grpcEncoding "google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/proto" // ensure default proto codec is registered first
	"google.golang.org/protobuf/proto"
)

// CodecName is the content-subtype the codec is registered under. It replaces
// the default proto codec, so clients need no call options.
const CodecName = "proto"

func init() {
	grpcEncoding.RegisterCodec(Codec{})
}

// Codec marshals protobuf messages with proto.Marshal and every other value
// (the gradebook request and response structs) as JSON.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return proto.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("gradebook codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, m)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("gradebook codec: unmarshal %T: %w", v, err)
	}
	return nil
}
