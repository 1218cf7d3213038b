package whatsmyname

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/internal/httpclient"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/storage"
)

// Verdict is the outcome of evaluating one site response
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictMatch
	VerdictNoMatch
)

// EvaluateMatch applies the site's rules in order m_code, m_string, e_code, e_string.
// The first rule that fires decides.
func EvaluateMatch(site Site, status int, body string) Verdict {
	if site.MCode != nil && status == *site.MCode {
		return VerdictMatch
	}
	if site.MString != "" && strings.Contains(body, site.MString) {
		return VerdictMatch
	}
	if site.ECode != nil && status == *site.ECode {
		return VerdictNoMatch
	}
	if site.EString != "" && strings.Contains(body, site.EString) {
		return VerdictNoMatch
	}
	return VerdictUnknown
}

// Result is one matched site
type Result struct {
	SiteName   string `json:"site_name"`
	URL        string `json:"url"`
	Matched    bool   `json:"matched"`
	StatusCode int    `json:"status_code"`
}

// Report is the JSON document written for a run
type Report struct {
	Username string   `json:"username"`
	Results  []Result `json:"results"`
}

// Doer performs one HTTP call and returns status and body
type Doer func(ctx context.Context, method, url string, headers map[string]string, body string) (int, []byte, error)

// Checker runs the site list against one username
type Checker struct {
	do          Doer
	timeout     time.Duration
	concurrency int
	logger      *zap.SugaredLogger
}

// NewChecker creates a Checker. concurrency < 1 means sequential.
func NewChecker(do Doer, timeout time.Duration, concurrency int, log *zap.SugaredLogger) *Checker {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.ComponentLogger("whatsmyname")
	}
	return &Checker{do: do, timeout: timeout, concurrency: concurrency, logger: log}
}

// Run checks every site with a uri_check. Results keep site-list order.
// A site that fails to respond is logged and left out.
func (c *Checker) Run(ctx context.Context, data *Data, username string) *Report {
	found := make([]*Result, len(data.Sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, site := range data.Sites {
		if site.URICheck == "" {
			continue
		}
		i, site := i, site
		g.Go(func() error {
			found[i] = c.check(gctx, site, username)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Username: username, Results: []Result{}}
	for _, r := range found {
		if r != nil {
			report.Results = append(report.Results, *r)
		}
	}
	return report
}

func (c *Checker) check(ctx context.Context, site Site, username string) *Result {
	if ctx.Err() != nil {
		return nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	method, body := http.MethodGet, ""
	if site.PostBody != "" {
		method, body = http.MethodPost, site.Body(username)
	}
	checkURL := site.CheckURL(username)

	status, content, err := c.do(ctx, method, checkURL, site.Headers, body)
	if err != nil {
		c.logger.Debugw("Site check failed", "site", site.Name, logger.FieldURL, checkURL, logger.FieldError, err.Error())
		return nil
	}
	if EvaluateMatch(site, status, string(content)) != VerdictMatch {
		return nil
	}

	name := site.Name
	if name == "" {
		name = checkURL
	}
	return &Result{
		SiteName:   name,
		URL:        site.PrettyURL(username),
		Matched:    true,
		StatusCode: status,
	}
}

// WriteReport writes report as indented JSON to path
func WriteReport(path string, report *Report) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create report dir %s", dir)
	}
	_, err := storage.WriteJSON(dir, name, report)
	return err
}

// ClientDoer adapts the guarded HTTP client to a Doer, adding userAgent
// unless the site sets its own
func ClientDoer(client *httpclient.SaferClient, userAgent string) Doer {
	return func(ctx context.Context, method, url string, headers map[string]string, body string) (int, []byte, error) {
		merged := map[string]string{"User-Agent": userAgent}
		for k, v := range headers {
			merged[k] = v
		}
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
			if _, ok := merged["Content-Type"]; !ok {
				merged["Content-Type"] = "application/x-www-form-urlencoded"
			}
		}
		resp, err := client.Fetch(ctx, method, url, merged, reader)
		if err != nil {
			return 0, nil, err
		}
		return resp.StatusCode, resp.Content, nil
	}
}
