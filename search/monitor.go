package search

import "github.com/poiesic/recall/core"

// QueryMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during a query.
type QueryMonitor interface {
	Start(query string, topK int, filters core.QueryFilters)
	AfterQueryEmbedding(vector []float32, cached bool)
	AfterCandidates(candidates []*core.ScoredChunk)
	Finish(hits []*core.SearchHit)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int, _ core.QueryFilters)   {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32, _ bool)      {}
func (n *noopMonitor) AfterCandidates(_ []*core.ScoredChunk)        {}
func (n *noopMonitor) Finish(_ []*core.SearchHit)                   {}
