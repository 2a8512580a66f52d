// Command popreport collects NGC population report data for one
// research subcategory and writes it to a JSON file.
//
// The run has three steps: discover every research group ID for the
// subcategory, fetch the PF and MS population report of every group
// over a worker pool, and write the merged rows as one JSON document.
// A failed (group, designation) unit is logged and skipped; only a
// discovery or report-write failure aborts the run.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/numistats/ngcpop/pkg/client"
	"github.com/numistats/ngcpop/pkg/logging"
	"github.com/numistats/ngcpop/pkg/population"
	"github.com/numistats/ngcpop/pkg/report"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const defaultUserAgent = "ngcpop/0.1.0 (+https://github.com/numistats/ngcpop)"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "popreport: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnvBool("LOG_PRETTY", false),
		Output: os.Stderr,
	}).With().Str("run_id", uuid.NewString()).Logger()

	subcategoryID := getEnvInt("SUBCATEGORY_ID", 187)
	outputFile := getEnv("OUTPUT_FILE", "ngc_population.json")
	workers := getEnvInt("WORKERS", 10)
	groupsURL := getEnv("GROUPS_URL", population.DefaultGroupsURL)
	populationURL := getEnv("POPULATION_URL", population.DefaultPopulationURL)

	ctx := context.Background()

	// Optional metrics listener
	if addr := getEnv("METRICS_ADDR", ""); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn().Err(err).Str("addr", addr).Msg("Metrics listener stopped")
			}
		}()
		logger.Info().Str("addr", addr).Msg("Serving metrics")
	}

	// Optional Redis for page caching and request pacing
	cfg := client.DefaultConfig(getEnv("USER_AGENT", defaultUserAgent))
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", redisURL, err)
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

		cfg.Redis = redisClient
		cfg.RateLimit = getEnvInt("RATE_LIMIT", 0)
		cfg.CacheTTL = getEnvDuration("CACHE_TTL", 10*time.Minute)
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}
	defer apiClient.Close()

	start := time.Now()
	logger.Info().
		Int("subcategory_id", subcategoryID).
		Int("workers", workers).
		Msg("Starting population report run")

	groupIDs, err := population.DiscoverGroups(ctx, apiClient, groupsURL, subcategoryID)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d group IDs\n", len(groupIDs))

	collector := population.NewCollector(apiClient, population.Config{
		PopulationURL:  populationURL,
		MaxConcurrency: workers,
		Progress:       os.Stdout,
	})
	rows := collector.Run(ctx, groupIDs)

	if err := report.Write(outputFile, rows); err != nil {
		return err
	}

	logger.Info().
		Str("file", outputFile).
		Int("rows", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Report written")
	fmt.Printf("Saved %s with %d rows\n", outputFile, len(rows))

	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a
// default value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a
// default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable ("10m",
// "90s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
