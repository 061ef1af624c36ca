package index

import "github.com/poiesic/docent/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to trace intermediate steps of a query.
type SearchMonitor interface {
	Start(query string, k int)
	AfterEmbedding(dimension int)
	AfterSimilaritySearch(matches []*core.SimilarityMatch)
	Dropped(id core.ID, err error)
	Finish(result *core.QueryResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                           {}
func (n *noopMonitor) AfterEmbedding(_ int)                            {}
func (n *noopMonitor) AfterSimilaritySearch(_ []*core.SimilarityMatch) {}
func (n *noopMonitor) Dropped(_ core.ID, _ error)                      {}
func (n *noopMonitor) Finish(_ *core.QueryResult)                      {}
