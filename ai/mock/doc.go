// Package mock has in-process doubles for the ai interfaces.
//
// MockEmbedder hashes words into a fixed number of buckets and normalizes
// the counts, so two texts sharing vocabulary score close together under
// cosine similarity. Set Dimension before first use to change the width.
// MockCompleter echoes the prompt text unless a func is injected:
//
//	completer := mock.NewMockCompleter().
//	    WithCompleteFunc(func(ctx context.Context, p ai.Prompt) (string, error) {
//	        return "", ai.ErrRateLimited
//	    })
//
// Both count their calls. MockProvider pairs them and records Close.
package mock
