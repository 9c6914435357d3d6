package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is the outcome of creating one entry.
type Result struct {
	Entry      Entry
	ProjectID  string
	HTMLLength int
	Err        error
}

// Summary aggregates a run.
type Summary struct {
	Total    int
	Created  int
	Failed   int
	Elapsed  time.Duration
	Failures []Result
}

// Runner creates projects one at a time through the HTTP API.
type Runner struct {
	server  string
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewRunner returns a Runner posting to server. A perSecond of zero or less
// disables pacing.
func NewRunner(server string, client *http.Client, perSecond float64, log *zap.Logger) *Runner {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if log == nil {
		log = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Runner{
		server:  strings.TrimRight(server, "/"),
		client:  client,
		limiter: limiter,
		log:     log,
	}
}

// Run creates every entry sequentially. A failed entry is logged and the run
// continues; only context cancellation stops it early.
func (r *Runner) Run(ctx context.Context, entries []Entry) (Summary, error) {
	started := time.Now()
	sum := Summary{Total: len(entries)}

	r.log.Info("starting batch project creation", zap.Int("projects", len(entries)), zap.String("server", r.server))

	for i, e := range entries {
		if err := r.limiter.Wait(ctx); err != nil {
			sum.Elapsed = time.Since(started)
			return sum, err
		}

		r.log.Info("processing project",
			zap.Int("n", i+1),
			zap.Int("of", len(entries)),
			zap.String("name", e.Name),
		)

		res := r.create(ctx, e)
		if res.Err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, res)
			r.log.Error("failed to create project", zap.Int("line", e.Line), zap.String("name", e.Name), zap.Error(res.Err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		sum.Created++
		r.log.Info("created project",
			zap.String("id", res.ProjectID),
			zap.String("name", e.Name),
			zap.Int("html_length", res.HTMLLength),
		)
	}

	sum.Elapsed = time.Since(started)
	r.log.Info("batch project creation completed",
		zap.Int("created", sum.Created),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, ctx.Err()
}

type createReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createResp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HTMLContent string `json:"html_content"`
}

func (r *Runner) create(ctx context.Context, e Entry) Result {
	res := Result{Entry: e}

	b, err := json.Marshal(createReq{Name: e.Name, Description: e.Description})
	if err != nil {
		res.Err = fmt.Errorf("marshal request: %w", err)
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.server+"/projects", bytes.NewReader(b))
	if err != nil {
		res.Err = fmt.Errorf("build request: %w", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		res.Err = fmt.Errorf("read response: %w", err)
		return res
	}

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return res
	}

	var out createResp
	if err := json.Unmarshal(body, &out); err != nil {
		res.Err = fmt.Errorf("decode response: %w", err)
		return res
	}
	res.ProjectID = out.ID
	res.HTMLLength = len(out.HTMLContent)
	return res
}
