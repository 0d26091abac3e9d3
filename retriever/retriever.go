// Package retriever adapts a core.VectorStore into the evidence source of a
// conversation turn. It normalizes k, orders results by descending score and
// maps every backend failure onto core.ErrRetrievalUnavailable so the flow
// controller can degrade to an empty evidence set.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/logging"
)

// DefaultK is the number of chunks returned when the caller passes k == 0.
const DefaultK = 4

// ErrInvalidK is returned for negative k.
var ErrInvalidK = errors.New("k must not be negative")

// Options configure a Retriever.
type Options struct {
	DefaultK int
	// Timeout bounds a single backend call; zero disables the bound and
	// leaves deadline handling to the caller's context.
	Timeout time.Duration
	Logger  logging.Logger
}

// Retriever queries a vector store for evidence.
type Retriever struct {
	store    core.VectorStore
	embedder core.Embedder
	opts     Options
}

// New creates a Retriever. embedder may be nil when callers only use Retrieve.
func New(store core.VectorStore, embedder core.Embedder, optFns ...func(o *Options)) *Retriever {
	opts := Options{
		DefaultK: DefaultK,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = DefaultK
	}
	opts.Logger = logging.OrNoOp(opts.Logger)
	return &Retriever{store: store, embedder: embedder, opts: opts}
}

// Retrieve returns up to k evidence chunks for an embedding, sorted by
// descending score with ties broken by id.
func (r *Retriever) Retrieve(ctx context.Context, embedding []float32, k int) ([]core.EvidenceChunk, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	if k == 0 {
		k = r.opts.DefaultK
	}
	if r.store == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrRetrievalUnavailable, core.ErrBackendNotConfigured)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	chunks, err := r.store.Query(ctx, embedding, k)
	if err != nil {
		r.opts.Logger.Warn("vector query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("%w: %w", core.ErrRetrievalUnavailable, err)
	}

	out := make([]core.EvidenceChunk, len(chunks))
	copy(out, chunks)
	core.SortEvidence(out)
	if len(out) > k {
		out = out[:k]
	}
	r.opts.Logger.Debug("retrieved evidence", "count", len(out), "k", k, "duration", time.Since(start))
	return out, nil
}

// RetrieveText embeds query and retrieves evidence for the resulting vector.
func (r *Retriever) RetrieveText(ctx context.Context, query string, k int) ([]core.EvidenceChunk, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}
	if r.embedder == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrRetrievalUnavailable, core.ErrBackendNotConfigured)
	}

	ectx, cancel := r.withTimeout(ctx)
	embedding, err := r.embedder.Embed(ectx, query)
	cancel()
	if err != nil {
		r.opts.Logger.Warn("query embedding failed", "error", err)
		return nil, fmt.Errorf("%w: embed: %w", core.ErrRetrievalUnavailable, err)
	}
	return r.Retrieve(ctx, embedding, k)
}

func (r *Retriever) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.Timeout > 0 {
		return context.WithTimeout(ctx, r.opts.Timeout)
	}
	return context.WithCancel(ctx)
}
