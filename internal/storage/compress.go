package storage

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"neuralrag/internal/errors"
)

// contentCodec lazily builds shared zstd encoder/decoder pairs. Neuron
// content can be large (raw source text); compressing it at rest is
// optional and transparent to callers of the Store's CRUD operations —
// the logical content field round-trips byte-for-byte either way.
type contentCodec struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	initErr error
}

var codec contentCodec

func (c *contentCodec) init() {
	c.once.Do(func() {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			c.initErr = err
			return
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			c.initErr = err
			return
		}
		c.encoder = enc
		c.decoder = dec
	})
}

func compressContent(content string) ([]byte, error) {
	codec.init()
	if codec.initErr != nil {
		return nil, errors.Wrap(errors.StoreFailure, "initializing content compressor", codec.initErr)
	}
	return codec.encoder.EncodeAll([]byte(content), nil), nil
}

func decompressContent(compressed []byte) (string, error) {
	codec.init()
	if codec.initErr != nil {
		return "", errors.Wrap(errors.StoreFailure, "initializing content compressor", codec.initErr)
	}
	out, err := codec.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", errors.Wrap(errors.StoreFailure, "decompressing neuron content", err)
	}
	return string(out), nil
}
