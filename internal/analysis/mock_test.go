package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/brand-scope/internal/generate"
	"github.com/sells-group/brand-scope/internal/search"
)

// scriptedGen answers generation calls through respond and records them.
type scriptedGen struct {
	mu      sync.Mutex
	calls   []generate.Request
	respond func(req generate.Request) (string, error)
}

func (g *scriptedGen) Complete(_ context.Context, req generate.Request) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	return g.respond(req)
}

func (g *scriptedGen) schemaCalls(name string) []generate.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []generate.Request
	for _, c := range g.calls {
		if c.Schema.Name == name {
			out = append(out, c)
		}
	}
	return out
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, q search.Query) ([]search.Document, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Document), args.Error(1)
}

const testUser = "6f1c2d4e-8a7b-4c3d-9e2f-1a2b3c4d5e6f"

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func testAnalyzer(gen generate.Generator, s search.Searcher, opts ...Option) *Analyzer {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRandom(func(n int) int { return n - 1 }),
	}
	return New(gen, s, nil, append(base, opts...)...)
}

func docs(texts ...string) []search.Document {
	out := make([]search.Document, len(texts))
	for i, t := range texts {
		out[i] = search.Document{URL: "https://x.com/p/" + t, Title: "post " + t, Text: t}
	}
	return out
}
