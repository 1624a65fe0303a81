package iocache

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// compressedMarker prefixes payloads that were compressed before storage.
var compressedMarker = []byte("ZS:")

// Encoders and decoders are safe for concurrent EncodeAll/DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// Codec turns cache values into bytes and back.
type Codec struct {
	threshold int
}

// NewCodec creates a codec that tries compression above threshold bytes.
// A non-positive threshold selects the default.
func NewCodec(threshold int) Codec {
	if threshold <= 0 {
		threshold = schema.DefaultCompressionThreshold
	}
	return Codec{threshold: threshold}
}

// Encode serializes v as JSON. Payloads longer than the threshold are compressed
// when that makes them strictly smaller.
func (c Codec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cache value: %w", err)
	}
	if len(data) <= c.threshold {
		return data, nil
	}

	compressed := zstdEncoder.EncodeAll(data, make([]byte, 0, len(compressedMarker)+len(data)/2))
	if len(compressedMarker)+len(compressed) >= len(data) {
		return data, nil
	}
	return append(append(make([]byte, 0, len(compressedMarker)+len(compressed)), compressedMarker...), compressed...), nil
}

// Decode reverses Encode into v. Any failure wraps contract.ErrCorruptEntry.
func (c Codec) Decode(data []byte, v any) error {
	if rest, ok := bytes.CutPrefix(data, compressedMarker); ok {
		raw, err := zstdDecoder.DecodeAll(rest, nil)
		if err != nil {
			return fmt.Errorf("%w: decompress: %v", contract.ErrCorruptEntry, err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", contract.ErrCorruptEntry, err)
	}
	return nil
}

// IsCompressed reports whether data carries the compression marker.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, compressedMarker)
}
