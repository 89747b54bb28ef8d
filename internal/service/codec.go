package service

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets PartitionServiceServer exchange plain Go structs
// (pkg/model.PartitionRequest, PartitionResponse, PartitionProgress) over
// grpc-go's transport without a protoc code-generation step: it registers
// under the "proto" name so grpc-go's default content-subtype picks it up
// transparently, the same way protoc-gen-go's codec would.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "proto"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
