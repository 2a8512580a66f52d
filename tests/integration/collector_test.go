package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/numistats/ngcpop/internal/testutil"
	"github.com/numistats/ngcpop/pkg/client"
	"github.com/numistats/ngcpop/pkg/population"
	"github.com/numistats/ngcpop/pkg/report"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// seedMock configures a small but complete backend: two groups across
// two discovery pages, with PF and MS populations.
func seedMock(mock *testutil.MockResearchAPI) {
	mock.SetGroupsPages([]int{1}, []int{2})

	mock.SetPopulationPages("PF", 1, []any{
		map[string]any{"displayName": "Barber Dime", "population_69": 2, "population_65": 7},
	})
	mock.SetPopulationPages("MS", 1, []any{
		map[string]any{"displayName": "Barber Dime", "population_66": 11},
	})
	mock.SetPopulationPages("PF", 2, []any{
		map[string]any{"displayName": "Mercury Dime", "population_70": 1},
	})
	mock.SetPopulationPages("MS", 2, []any{
		map[string]any{"displayName": "Mercury Dime", "population_63": 40, "population_3": 2},
	})
}

// runPipeline executes discovery, collection, and report writing.
func runPipeline(t *testing.T, api *client.Client, mock *testutil.MockResearchAPI, outputFile string) []population.CoinResult {
	t.Helper()
	ctx := context.Background()

	groupIDs, err := population.DiscoverGroups(ctx, api, mock.GroupsURL(), 187)
	if err != nil {
		t.Fatalf("DiscoverGroups() error = %v", err)
	}
	if len(groupIDs) != 2 {
		t.Fatalf("discovered %d groups, want 2", len(groupIDs))
	}

	collector := population.NewCollector(api, population.Config{
		PopulationURL:  mock.PopulationURL(),
		MaxConcurrency: 4,
	})
	rows := collector.Run(ctx, groupIDs)

	if err := report.Write(outputFile, rows); err != nil {
		t.Fatalf("report.Write() error = %v", err)
	}
	return rows
}

// TestFullRunWithCache runs the whole pipeline twice against an
// unchanged backend with the Redis page cache enabled: the second run
// must produce the same row set without touching the API again.
func TestFullRunWithCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockResearchAPI()
	defer mock.Close()
	seedMock(mock)

	cfg := client.DefaultConfig("ngcpop-integration/0.0.0")
	cfg.Redis = redisClient
	cfg.CacheTTL = time.Minute

	api, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	defer api.Close()

	dir := t.TempDir()
	firstFile := filepath.Join(dir, "first.json")
	secondFile := filepath.Join(dir, "second.json")

	first := runPipeline(t, api, mock, firstFile)
	requestsAfterFirst := mock.GetRequestCount()

	second := runPipeline(t, api, mock, secondFile)

	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("got %d and %d rows, want 4 each", len(first), len(second))
	}

	if got := mock.GetRequestCount(); got != requestsAfterFirst {
		t.Errorf("second run made %d extra API requests, want 0 (cache)", got-requestsAfterFirst)
	}

	// Same set of rows (completion order may differ).
	count := make(map[string]int)
	for _, r := range first {
		count[r.Designation+"/"+r.CoinName]++
	}
	for _, r := range second {
		count[r.Designation+"/"+r.CoinName]--
	}
	for k, n := range count {
		if n != 0 {
			t.Errorf("row %q unbalanced across runs (%+d)", k, n)
		}
	}
}

// TestFullRunWithPacer verifies the paced client still completes a full
// run and writes a well-formed report.
func TestFullRunWithPacer(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockResearchAPI()
	defer mock.Close()
	seedMock(mock)

	cfg := client.DefaultConfig("ngcpop-integration/0.0.0")
	cfg.Redis = redisClient
	cfg.RateLimit = 50

	api, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	defer api.Close()

	outputFile := filepath.Join(t.TempDir(), "pop.json")
	rows := runPipeline(t, api, mock, outputFile)

	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"Barber Dime", "Mercury Dime", `"Grade": "PF70"`, `"Grade": "AG3"`} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}
}
