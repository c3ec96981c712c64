package evidence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RameshMYatnalli/new-claimsat/internal/cache"
	"go.uber.org/zap"
)

// Analysis is the outcome of analyzing one evidence file.
type Analysis struct {
	Kind        Kind    `json:"kind"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
	ContentHash string  `json:"content_hash"`
}

// Analyze hashes data and scores it according to the kind implied by ext.
// It never fails: undecodable images score 0 and unknown kinds score 0.5.
func Analyze(data []byte, ext string) Analysis {
	a := Analysis{
		Kind:        ClassifyExtension(ext),
		ContentHash: ContentHash(data),
	}
	switch a.Kind {
	case KindImage:
		a.Score, a.Explanation = VisualRelevanceScore(data)
	case KindVideo:
		a.Score, a.Explanation = VideoQuality(data)
	default:
		a.Score, a.Explanation = 0.5, "Unknown file type, cannot analyze"
	}
	return a
}

// Analyzer memoizes Analyze by content hash and extension.
type Analyzer struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache stores results in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = c
		a.ttl = ttl
	}
}

// WithLogger sets a logger for cache diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer creates an analyzer. Without WithCache every call recomputes.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the analysis of data, from cache when the same bytes were
// analyzed before under the same kind.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, ext string) Analysis {
	if a.cache == nil {
		return Analyze(data, ext)
	}
	hash := ContentHash(data)
	key := cache.Key("evidence", hash, string(ClassifyExtension(ext)))
	if raw, ok := a.cache.Get(ctx, key); ok {
		var cached Analysis
		if err := json.Unmarshal(raw, &cached); err == nil {
			if a.logger != nil {
				a.logger.Debug("evidence analysis cache hit", zap.String("content_hash", hash))
			}
			return cached
		}
	}
	result := Analyze(data, ext)
	if raw, err := json.Marshal(result); err == nil {
		if err := a.cache.Set(ctx, key, raw, a.ttl); err != nil && a.logger != nil {
			a.logger.Debug("evidence analysis cache write failed", zap.Error(err))
		}
	}
	return result
}
