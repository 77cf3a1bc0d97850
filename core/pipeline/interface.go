package pipeline

import (
	"context"
	"sync"

	"github.com/wikigraph/relata/helper"
)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Encoder wraps an EmbedFunc behind a lock. The hugot Go-backend
// pipeline supports only one in-flight inference at a time, so encodes
// are serialized here; the lock covers nothing but the encode call and
// is independent of any other shared resource.
type Encoder struct {
	mu    sync.Mutex
	embed EmbedFunc
}

// NewEncoder creates an encoder from an embedding function
func NewEncoder(embed EmbedFunc) *Encoder {
	return &Encoder{embed: embed}
}

// Encode maps text to its fixed-dimension embedding. Cancellation is
// honored before taking the lock so a dead request never queues behind
// other encodes.
func (e *Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, helper.NewEncodingError("encode", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	embedding, err := e.embed(text)
	if err != nil {
		return nil, helper.NewEncodingError("encode", err)
	}

	return embedding, nil
}
