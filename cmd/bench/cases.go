// README: Smoke cases for pricing, time windows, purchases and drafts, plus load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ridepass/internal/infra"
	"ridepass/internal/testutil"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
	token string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := infra.NewDB(ctx, r.cfg.DSN); err == nil {
			r.db = db
		} else {
			fmt.Printf("db: %v\n", err)
		}
	}
	if r.cfg.RedisAddr != "" {
		if rdb, err := infra.NewRedis(ctx, r.cfg.RedisAddr); err == nil {
			r.redis = rdb
		} else {
			fmt.Printf("redis: %v\n", err)
		}
	}
	if r.cfg.JWTSecret != "" {
		uid := fmt.Sprintf("bench-%d", time.Now().UnixNano())
		if tok, err := infra.IssueDevToken(r.cfg.JWTSecret, uid, "parent", time.Hour); err == nil {
			r.token = tok
		}
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Postgres reachable", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: statusFail, Note: "db not configured"}
			}
			return Result{Status: statusPass}
		}},
		{Name: "Env: Redis reachable", Run: func(ctx context.Context, r *Runner) Result {
			if r.redis == nil {
				return Result{Status: statusFail, Note: "redis not configured"}
			}
			return Result{Status: statusPass}
		}},
		{Name: "Migration: apply (optional)", Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.ApplyMigration {
				return Result{Status: statusSkip, Note: "apply-migration=false"}
			}
			if r.db == nil {
				return Result{Status: statusFail, Note: "db not configured"}
			}
			if err := testutil.ApplyMigrations(ctx, r.db); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			return Result{Status: statusPass}
		}},
		{Name: "Migration: ticket bundles seeded", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: statusFail, Note: "db not configured"}
			}
			var n int
			if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_bundles`).Scan(&n); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if n < 3 {
				return Result{Status: statusFail, Note: fmt.Sprintf("bundles=%d", n)}
			}
			return Result{Status: statusPass, Note: fmt.Sprintf("bundles=%d", n)}
		}},
		{Name: "API: health", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/health", nil, false, http.StatusOK, nil)
		}},
		{Name: "Pricing: catalog", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/tickets/catalog", nil, false, http.StatusOK, nil)
		}},
		quoteCase(11, 180000, 11),
		quoteCase(25, 450000, 27),
		quoteCase(34, 540000, 34),
		{Name: "Pricing: zero rides rejected", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/tickets/quote", map[string]any{"rides": 0}, false, http.StatusBadRequest, nil)
		}},
		{Name: "Auth: protected route without token", Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodGet, "/api/schedules", nil, false, http.StatusUnauthorized, nil)
		}},
		authCase("Schedule: window over an hour flagged", func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/schedules/validate-window",
				map[string]any{"pickup_time": "오전 7:30", "dropoff_time": "오전 8:45"}, true, http.StatusOK,
				func(body map[string]any) error {
					if body["valid"] != false {
						return fmt.Errorf("valid=%v", body["valid"])
					}
					return nil
				})
		}),
		authCase("Schedule: draft round trip", func(ctx context.Context, r *Runner) Result {
			draft := map[string]any{"ride_type": "recurring", "start_date": "2025-03-03", "end_date": "2025-03-31"}
			if res := r.expect(ctx, http.MethodPut, "/api/schedules/draft", draft, true, http.StatusNoContent, nil); res.Status != statusPass {
				return res
			}
			return r.expect(ctx, http.MethodGet, "/api/schedules/draft", nil, true, http.StatusOK,
				func(body map[string]any) error {
					if body["ride_type"] != "recurring" {
						return fmt.Errorf("ride_type=%v", body["ride_type"])
					}
					return nil
				})
		}),
		authCase("Tickets: checkout, confirm, balance", func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			var orderID string
			res := r.expect(ctx, http.MethodPost, "/api/tickets/checkout", map[string]any{"rides": 10}, true, http.StatusCreated,
				func(body map[string]any) error {
					orderID, _ = body["order_id"].(string)
					if orderID == "" {
						return fmt.Errorf("no order_id")
					}
					return nil
				})
			if res.Status != statusPass {
				return res
			}
			if res = r.expect(ctx, http.MethodPost, "/api/tickets/purchases/"+orderID+"/confirm", nil, true, http.StatusOK, nil); res.Status != statusPass {
				return res
			}
			res = r.expect(ctx, http.MethodGet, "/api/tickets/balance", nil, true, http.StatusOK,
				func(body map[string]any) error {
					if rides, _ := body["rides"].(float64); rides < 11 {
						return fmt.Errorf("rides=%v", body["rides"])
					}
					return nil
				})
			res.Latency = time.Since(start)
			return res
		}),
		{Name: "Load: quote throughput", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, "/api/tickets/quote", map[string]any{"rides": 42})
		}},
	}
}

func quoteCase(rides int, wantTotal float64, wantGranted float64) TestCase {
	return TestCase{
		Name: fmt.Sprintf("Pricing: quote %d rides", rides),
		Run: func(ctx context.Context, r *Runner) Result {
			return r.expect(ctx, http.MethodPost, "/api/tickets/quote", map[string]any{"rides": rides}, false, http.StatusOK,
				func(body map[string]any) error {
					if body["total_price"] != wantTotal || body["granted_rides"] != wantGranted {
						return fmt.Errorf("total=%v granted=%v", body["total_price"], body["granted_rides"])
					}
					return nil
				})
		},
	}
}

func authCase(name string, run func(ctx context.Context, r *Runner) Result) TestCase {
	return TestCase{Name: name, Run: func(ctx context.Context, r *Runner) Result {
		if r.token == "" {
			return Result{Status: statusSkip, Note: "no jwt secret"}
		}
		return run(ctx, r)
	}}
}

func (r *Runner) do(ctx context.Context, method, path string, body any, auth bool) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	return r.httpc.Do(req)
}

// expect sends one request and checks the status and, optionally, the JSON body.
func (r *Runner) expect(ctx context.Context, method, path string, body any, auth bool, want int, check func(map[string]any) error) Result {
	start := time.Now()
	resp, err := r.do(ctx, method, path, body, auth)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	latency := time.Since(start)

	if resp.StatusCode != want {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d body=%s", resp.StatusCode, truncate(raw))}
	}
	if check != nil {
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return Result{Status: statusFail, Latency: latency, Note: err.Error()}
		}
		if err := check(decoded); err != nil {
			return Result{Status: statusFail, Latency: latency, Note: err.Error()}
		}
	}
	return Result{Status: statusPass, Latency: latency}
}

func perfLoad(ctx context.Context, r *Runner, path string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				resp, err := r.do(ctx, http.MethodPost, path, payload, false)
				if err != nil {
					errCount.Add(1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode >= 300 {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
