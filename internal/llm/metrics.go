package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/auralabs/aura/internal/logging"
)

// MetricsProvider wraps an inference provider with timing and metrics
// collection.
type MetricsProvider struct {
	provider Provider
	name     string
	log      *logging.Logger

	// Atomic counters
	totalCalls        int64
	totalErrors       int64
	totalTokens       int64
	totalInputTokens  int64
	totalOutputTokens int64

	// Protected by mutex
	mu           sync.RWMutex
	totalLatency time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
}

// NewMetricsProvider wraps a provider with metrics collection.
func NewMetricsProvider(provider Provider) *MetricsProvider {
	return &MetricsProvider{
		provider:   provider,
		name:       provider.Name(),
		log:        logging.Global(),
		minLatency: time.Hour, // Replaced on first call
	}
}

// Chat implements Provider with metrics.
func (m *MetricsProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	resp, err := m.provider.Chat(ctx, req)
	latency := time.Since(start)

	atomic.AddInt64(&m.totalCalls, 1)
	if err != nil {
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.mu.Lock()
	m.totalLatency += latency
	if latency < m.minLatency {
		m.minLatency = latency
	}
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	m.mu.Unlock()

	if resp != nil && resp.TokensUsed > 0 {
		atomic.AddInt64(&m.totalTokens, int64(resp.TokensUsed))
		atomic.AddInt64(&m.totalInputTokens, int64(resp.PromptTokens))
		atomic.AddInt64(&m.totalOutputTokens, int64(resp.CompletionTokens))
	}

	if err != nil {
		m.log.Warn("[LLM] %s/%s FAILED after %v: %v", m.name, req.Model, latency, err)
	} else {
		tokens := 0
		if resp != nil {
			tokens = resp.TokensUsed
		}
		m.log.Debug("[LLM] %s/%s completed in %v (%d tokens)", m.name, req.Model, latency, tokens)
	}

	return resp, err
}

// Name implements Provider.
func (m *MetricsProvider) Name() string {
	return m.name
}

// Available implements Provider.
func (m *MetricsProvider) Available() bool {
	return m.provider.Available()
}

// GetMetrics returns current metrics.
func (m *MetricsProvider) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := atomic.LoadInt64(&m.totalCalls)
	errors := atomic.LoadInt64(&m.totalErrors)

	avgLatency := time.Duration(0)
	if calls > 0 {
		avgLatency = m.totalLatency / time.Duration(calls)
	}

	errorRate := float64(0)
	if calls > 0 {
		errorRate = float64(errors) / float64(calls)
	}

	return map[string]interface{}{
		"provider":       m.name,
		"total_calls":    calls,
		"total_errors":   errors,
		"error_rate":     errorRate,
		"total_tokens":   atomic.LoadInt64(&m.totalTokens),
		"input_tokens":   atomic.LoadInt64(&m.totalInputTokens),
		"output_tokens":  atomic.LoadInt64(&m.totalOutputTokens),
		"avg_latency_ms": avgLatency.Milliseconds(),
		"min_latency_ms": m.minLatency.Milliseconds(),
		"max_latency_ms": m.maxLatency.Milliseconds(),
	}
}

// Reset clears all metrics.
func (m *MetricsProvider) Reset() {
	atomic.StoreInt64(&m.totalCalls, 0)
	atomic.StoreInt64(&m.totalErrors, 0)
	atomic.StoreInt64(&m.totalTokens, 0)
	atomic.StoreInt64(&m.totalInputTokens, 0)
	atomic.StoreInt64(&m.totalOutputTokens, 0)

	m.mu.Lock()
	m.totalLatency = 0
	m.minLatency = time.Hour
	m.maxLatency = 0
	m.mu.Unlock()
}

// Unwrap returns the underlying provider.
func (m *MetricsProvider) Unwrap() Provider {
	return m.provider
}

// ═══════════════════════════════════════════════════════════════════════════════
// METRICS REGISTRY
// ═══════════════════════════════════════════════════════════════════════════════

// MetricsRegistry tracks all MetricsProvider instances for aggregated
// reporting on /api/status.
type MetricsRegistry struct {
	mu        sync.RWMutex
	providers map[string]*MetricsProvider
}

var globalRegistry = &MetricsRegistry{
	providers: make(map[string]*MetricsProvider),
}

// Register adds a MetricsProvider to the registry.
func (r *MetricsRegistry) Register(provider *MetricsProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetAllMetrics returns aggregated metrics from all providers.
func (r *MetricsRegistry) GetAllMetrics() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]interface{}, len(r.providers))
	for name, provider := range r.providers {
		result[name] = provider.GetMetrics()
	}
	return result
}

// RegisterMetricsProvider adds a provider to the global registry.
func RegisterMetricsProvider(provider *MetricsProvider) {
	globalRegistry.Register(provider)
}

// GetAllMetrics returns metrics from all registered providers.
func GetAllMetrics() map[string]interface{} {
	return globalRegistry.GetAllMetrics()
}
