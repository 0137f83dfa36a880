package search

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/cost"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/pkg/jina"
)

// JinaSearcher runs queries through Jina Search.
type JinaSearcher struct {
	client    jina.Client
	timeout   time.Duration
	stripHTML bool
	metrics   *metrics.Metrics
}

// JinaOption configures a JinaSearcher.
type JinaOption func(*JinaSearcher)

// WithTimeout bounds each search call.
func WithTimeout(d time.Duration) JinaOption {
	return func(s *JinaSearcher) { s.timeout = d }
}

// WithHTMLStripping reduces markup in result text to plain text.
func WithHTMLStripping(on bool) JinaOption {
	return func(s *JinaSearcher) { s.stripHTML = on }
}

// WithMetrics counts search outcomes.
func WithMetrics(m *metrics.Metrics) JinaOption {
	return func(s *JinaSearcher) { s.metrics = m }
}

// NewJinaSearcher wraps a Jina client.
func NewJinaSearcher(client jina.Client, opts ...JinaOption) *JinaSearcher {
	s := &JinaSearcher{client: client, stripHTML: true}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search implements Searcher. Only the first domain is used as a site
// filter; Jina accepts one.
func (s *JinaSearcher) Search(ctx context.Context, q Query) ([]Document, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var opts []jina.SearchOption
	if q.NumResults > 0 {
		opts = append(opts, jina.WithCount(q.NumResults))
	}
	if len(q.Domains) > 0 {
		opts = append(opts, jina.WithSiteFilter(q.Domains[0]))
	}
	if !q.IncludeText {
		opts = append(opts, jina.WithoutContent())
	}

	cost.LedgerFrom(ctx).AddSearch()
	resp, err := s.client.Search(ctx, q.Text, opts...)
	if err != nil {
		s.count("error")
		zap.L().Warn("search: query failed", zap.String("query", q.Text), zap.Error(err))
		return nil, &SearchError{Query: q.Text, Err: err}
	}
	s.count("success")

	docs := make([]Document, 0, len(resp.Data))
	for _, r := range resp.Data {
		if q.NumResults > 0 && len(docs) == q.NumResults {
			break
		}
		doc := Document{URL: r.URL, Title: r.Title}
		if q.IncludeText {
			doc.Text = r.Content
			if doc.Text == "" {
				doc.Text = r.Description
			}
			if s.stripHTML {
				doc.Text = plainText(doc.Text)
			}
		}
		docs = append(docs, doc)
	}

	zap.L().Debug("search: query done",
		zap.String("query", q.Text),
		zap.Strings("domains", q.Domains),
		zap.Int("results", len(docs)),
	)
	return docs, nil
}

func (s *JinaSearcher) count(status string) {
	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues(status).Inc()
	}
}

// plainText returns the visible text of an HTML fragment with whitespace
// collapsed. Text without markup is returned unchanged.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var _ Searcher = (*JinaSearcher)(nil)

