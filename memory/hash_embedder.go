package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/hupe1980/folio/core"
)

// HashEmbedder is a deterministic bag-of-words embedder using the hashing
// trick. It needs no network access and is meant for local runs and tests.
type HashEmbedder struct {
	Dim int
}

var _ core.Embedder = HashEmbedder{}

// NewHashEmbedder returns an embedder producing vectors of dimension dim (default 256).
func NewHashEmbedder(dim int) HashEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return HashEmbedder{Dim: dim}
}

// Embed implements core.Embedder.
func (h HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := h.Dim
	if dim <= 0 {
		dim = 256
	}
	vec := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		f := fnv.New32a()
		_, _ = f.Write([]byte(w))
		vec[f.Sum32()%uint32(dim)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}
