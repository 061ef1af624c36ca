package answer

import "github.com/poiesic/docent/core"

// Monitor provides hooks to observe how an answer is produced.
type Monitor interface {
	Start(question string)
	AfterRetrieval(result *core.QueryResult)
	AfterAssembly(cited, dropped []core.ID)
	Finish(answer *core.AnswerResult)
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterRetrieval(_ *core.QueryResult) {}
func (n *noopMonitor) AfterAssembly(_, _ []core.ID)       {}
func (n *noopMonitor) Finish(_ *core.AnswerResult)        {}
