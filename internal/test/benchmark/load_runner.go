// Package benchmark drives concurrent requests against a running portal and
// summarises latency and status codes.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"strata-portal/pkg/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Runner sends Requests calls with at most Concurrency in flight
type Runner struct {
	BaseURL     string
	Concurrency int
	Requests    int
	Token       string

	client *resty.Client
}

// Result summarises one endpoint run
type Result struct {
	Method         string        `json:"method"`
	Path           string        `json:"path"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	Elapsed        time.Duration `json:"elapsed"`
	Min            time.Duration `json:"min"`
	Max            time.Duration `json:"max"`
	P50            time.Duration `json:"p50"`
	P95            time.Duration `json:"p95"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors,omitempty"`
}

type sample struct {
	latency time.Duration
	status  int
	err     error
}

// NewRunner creates a runner; concurrency and requests are at least 1
func NewRunner(baseURL string, concurrency, requests int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if requests < 1 {
		requests = 1
	}
	return &Runner{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10*time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

// Login exchanges credentials for a token used on every later request
func (r *Runner) Login(ctx context.Context, email, password string) error {
	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&envelope).
		SetError(&envelope).
		Post("/auth/login")
	if err != nil {
		return err
	}
	if resp.IsError() || envelope.Data.Token == "" {
		return fmt.Errorf("login failed: %d %s", resp.StatusCode(), envelope.Message)
	}

	r.Token = envelope.Data.Token
	return nil
}

// Get benchmarks a GET endpoint
func (r *Runner) Get(ctx context.Context, path string) *Result {
	return r.Run(ctx, resty.MethodGet, path, nil)
}

// Post benchmarks a POST endpoint with the same body on every call
func (r *Runner) Post(ctx context.Context, path string, body interface{}) *Result {
	return r.Run(ctx, resty.MethodPost, path, body)
}

// Run fires the configured number of requests. Any non-2xx status counts as a failure.
func (r *Runner) Run(ctx context.Context, method, path string, body interface{}) *Result {
	samples := make(chan sample, r.Requests)
	slots := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < r.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			samples <- r.do(ctx, method, path, body)
		}()
	}
	wg.Wait()
	close(samples)

	return summarise(method, path, r.Concurrency, r.Requests, time.Since(start), samples)
}

func (r *Runner) do(ctx context.Context, method, path string, body interface{}) sample {
	req := r.client.R().SetContext(ctx)
	if r.Token != "" {
		req.SetAuthToken(r.Token)
	}
	if body != nil {
		req.SetBody(body)
	}

	began := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return sample{err: err}
	}
	return sample{latency: time.Since(began), status: resp.StatusCode()}
}

func summarise(method, path string, concurrency, total int, elapsed time.Duration, samples <-chan sample) *Result {
	res := &Result{
		Method:        method,
		Path:          path,
		Concurrency:   concurrency,
		TotalRequests: total,
		Elapsed:       elapsed,
		StatusCodes:   make(map[int]int),
	}

	var latencies []time.Duration
	for s := range samples {
		if s.err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, s.err.Error())
			continue
		}
		latencies = append(latencies, s.latency)
		res.StatusCodes[s.status]++
		if s.status >= 200 && s.status < 300 {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		res.Min = latencies[0]
		res.Max = latencies[len(latencies)-1]
		res.P50 = percentile(latencies, 50)
		res.P95 = percentile(latencies, 95)
	}
	if elapsed > 0 {
		res.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	return res
}

// percentile uses nearest rank on sorted
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// SuccessRate is the share of 2xx responses, 0..1
func (res *Result) SuccessRate() float64 {
	if res.TotalRequests == 0 {
		return 0
	}
	return float64(res.SuccessCount) / float64(res.TotalRequests)
}

// Err summarises failures, nil when every request succeeded
func (res *Result) Err() error {
	if res.FailureCount == 0 {
		return nil
	}
	msg := fmt.Sprintf("%s %s: %d of %d requests failed", res.Method, res.Path, res.FailureCount, res.TotalRequests)
	if len(res.Errors) > 0 {
		msg += ": " + res.Errors[0]
	}
	return errors.New(msg)
}

// Log writes the summary as one structured entry
func (res *Result) Log() {
	logger.L().Info("load run",
		zap.String("method", res.Method),
		zap.String("path", res.Path),
		zap.Int("concurrency", res.Concurrency),
		zap.Int("requests", res.TotalRequests),
		zap.Int("success", res.SuccessCount),
		zap.Int("failure", res.FailureCount),
		zap.Duration("p50", res.P50),
		zap.Duration("p95", res.P95),
		zap.Duration("max", res.Max),
		zap.Float64("rps", res.RequestsPerSec),
		zap.Any("status_codes", res.StatusCodes),
	)
}
