package retrieve

import "github.com/poiesic/quarry/core"

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(query string, k int)
	AfterQueryEmbedding(embedding []float32)
	AfterIndexQuery(hits []core.ScoredFragment)
	AfterFiltering(hits []core.ScoredFragment)
	Finish(hits []core.ScoredFragment)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)      {}
func (n *noopMonitor) AfterIndexQuery(_ []core.ScoredFragment) {}
func (n *noopMonitor) AfterFiltering(_ []core.ScoredFragment)  {}
func (n *noopMonitor) Finish(_ []core.ScoredFragment)          {}
