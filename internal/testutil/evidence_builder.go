package testutil

import (
	"fmt"

	"github.com/hupe1980/folio/core"
)

// Evidence builds chunks with descending scores from the given texts. The
// first text becomes the top chunk.
func Evidence(texts ...string) []core.EvidenceChunk {
	out := make([]core.EvidenceChunk, len(texts))
	for i, t := range texts {
		out[i] = core.EvidenceChunk{
			ID:      fmt.Sprintf("chunk-%d", i+1),
			Section: "portfolio",
			Text:    t,
			Score:   1 - float64(i)*0.1,
		}
	}
	return out
}

// CodeChunk is a portfolio passage carrying a fenced Go snippet.
const CodeChunk = "Built a rate limited job queue.\n```go\nfunc (q *Queue) Push(j Job) error {\n\treturn q.limiter.Wait(ctx)\n}\n```\nIt handles 5k jobs/s."

// TableChunk is a portfolio passage carrying key/value metrics.
const TableChunk = "Production metrics:\nlatency_p99: 120ms\nuptime: 99.95%\nrequests_per_day: 2M"
