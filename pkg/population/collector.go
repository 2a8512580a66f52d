package population

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/numistats/ngcpop/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for population collection.
var (
	groupsDiscovered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ngcpop_groups_discovered",
		Help: "Research group IDs found during discovery",
	})

	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ngcpop_units_total",
		Help: "Completed (group, designation) units by designation and result",
	}, []string{"designation", "result"})

	rowsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngcpop_rows_collected_total",
		Help: "Coin rows collected across all units",
	})
)

// Config holds collector configuration.
type Config struct {
	// PopulationURL is the population endpoint base (no trailing slash).
	PopulationURL string

	// MaxConcurrency is the number of units fetched in parallel.
	MaxConcurrency int

	// Progress receives human-readable progress lines; nil discards them.
	Progress io.Writer
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() Config {
	return Config{
		PopulationURL:  DefaultPopulationURL,
		MaxConcurrency: 10,
	}
}

// Collector fetches population reports for discovered groups over a
// bounded worker pool.
type Collector struct {
	api    APIClient
	config Config
	logger zerolog.Logger
}

// NewCollector creates a collector.
func NewCollector(api APIClient, cfg Config) *Collector {
	if cfg.PopulationURL == "" {
		cfg.PopulationURL = DefaultPopulationURL
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 10
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}

	return &Collector{
		api:    api,
		config: cfg,
		logger: log.With().Str("component", "collector").Logger(),
	}
}

// unit is one (group, designation) task.
type unit struct {
	GroupID     int
	Designation Designation
}

// unitResult is what a worker hands back: the unit's rows, or the error
// that aborted it. Workers never touch shared state.
type unitResult struct {
	Unit unit
	Rows []CoinResult
	Err  error
}

// Run fetches the population report of every (group, designation) pair
// and returns the merged rows in completion order.
//
// Units are independent: one worker per slot pulls units off a queue,
// fetches all pages, and sends its rows back over a channel. A failed
// unit is logged with its group and designation and contributes nothing
// to the output; every other unit is unaffected. Run waits for all
// dispatched units before returning, even after failures.
func (c *Collector) Run(ctx context.Context, groupIDs []int) []CoinResult {
	start := time.Now()
	total := len(groupIDs) * len(Designations)

	units := make(chan unit, total)
	results := make(chan unitResult, total)

	for _, gid := range groupIDs {
		for _, des := range Designations {
			units <- unit{GroupID: gid, Designation: des}
		}
	}
	close(units)

	var wg sync.WaitGroup
	for i := 0; i < c.config.MaxConcurrency; i++ {
		wg.Add(1)
		go c.worker(ctx, units, results, &wg)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// The result slice is only ever touched here, on the collecting
	// goroutine.
	var rows []CoinResult
	done := 0
	for res := range results {
		done++
		if res.Err != nil {
			unitsTotal.WithLabelValues(string(res.Unit.Designation), "error").Inc()
			c.logger.Warn().
				Int("group_id", res.Unit.GroupID).
				Str("designation", string(res.Unit.Designation)).
				Err(res.Err).
				Msg("Unit failed, dropping its rows")
			fmt.Fprintf(c.config.Progress, "[%d/%d] error group %d (%s): %v\n",
				done, total, res.Unit.GroupID, res.Unit.Designation, res.Err)
			continue
		}

		unitsTotal.WithLabelValues(string(res.Unit.Designation), "ok").Inc()
		rowsCollected.Add(float64(len(res.Rows)))
		rows = append(rows, res.Rows...)
		fmt.Fprintf(c.config.Progress, "[%d/%d] done group %d (%s, %d coins)\n",
			done, total, res.Unit.GroupID, res.Unit.Designation, len(res.Rows))
	}

	c.logger.Info().
		Int("units", total).
		Int("rows", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Collection complete")

	return rows
}

// worker processes units from the queue until it is drained.
func (c *Collector) worker(ctx context.Context, units <-chan unit, results chan<- unitResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for u := range units {
		rows, err := c.collectUnit(ctx, u)
		results <- unitResult{Unit: u, Rows: rows, Err: err}
	}
}

// collectUnit fetches every population page for one (group,
// designation) pair and extracts its coin rows. Any page failure
// discards the whole unit, including rows from pages already fetched.
func (c *Collector) collectUnit(ctx context.Context, u unit) ([]CoinResult, error) {
	fetch := pagination.FetchFunc(func(ctx context.Context, page int) (pagination.Page, error) {
		var p pagination.Page
		pageURL := populationPageURL(c.config.PopulationURL, u.Designation, u.GroupID, page)
		if err := c.api.GetJSON(ctx, pageURL, &p); err != nil {
			return pagination.Page{}, err
		}
		return p, nil
	})

	endpoint := fmt.Sprintf("population/%s/%d", u.Designation, u.GroupID)
	items, err := pagination.FetchAll(ctx, endpoint, fetch)
	if err != nil {
		return nil, err
	}

	var rows []CoinResult
	for _, raw := range items {
		result, ok, err := ExtractCoin(raw, u.GroupID, u.Designation)
		if err != nil {
			return nil, fmt.Errorf("extract coin for group %d: %w", u.GroupID, err)
		}
		if ok {
			rows = append(rows, result)
		}
	}
	return rows, nil
}
