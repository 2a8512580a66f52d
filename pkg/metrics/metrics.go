// Package metrics provides the centralized Prometheus registry for the
// collector. All metrics are defined in their respective packages
// (client, cache, ratelimit, population) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the collector.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ngcpop_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - ngcpop_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - ngcpop_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Cache Metrics (pkg/cache):
//   - ngcpop_cache_hits_total (Counter): Page cache hits
//   - ngcpop_cache_misses_total (Counter): Page cache misses
//   - ngcpop_cache_size_bytes (Gauge): Current page cache size in bytes
//   - ngcpop_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pacer Metrics (pkg/ratelimit):
//   - ngcpop_pacer_admitted_total (Counter): Requests admitted by the pacer
//   - ngcpop_pacer_throttles_total (Counter): Requests that waited for the next window
//
// Collection Metrics (pkg/population):
//   - ngcpop_groups_discovered (Gauge): Research group IDs found during discovery
//   - ngcpop_units_total{designation, result} (Counter): Units by designation and ok/error result
//   - ngcpop_rows_collected_total (Counter): Coin rows collected across all units
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(ngcpop_cache_hits_total[5m])) /
//   (sum(rate(ngcpop_cache_hits_total[5m])) + sum(rate(ngcpop_cache_misses_total[5m])))
//
//   # Unit Failure Rate
//   sum(rate(ngcpop_units_total{result="error"}[5m])) / sum(rate(ngcpop_units_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ngcpop_request_duration_seconds_bucket[5m]))
