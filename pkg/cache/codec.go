package cache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Entries are stored as zstd frames of their JSON encoding. Catalog payloads
// (field lists, dashcards) are highly repetitive and shrink several times over.

// zstd.Encoder and zstd.Decoder are safe for concurrent use with EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeEntry marshals and compresses an entry.
func encodeEntry(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return zstdEncoder.EncodeAll(data, nil), nil
}

// decodeEntry decompresses and unmarshals an entry.
func decodeEntry(compressed []byte) (*Entry, error) {
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrInvalidEntry, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}
