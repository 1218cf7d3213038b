// Package lookup runs one identity lookup: it plans requests across the
// configured sources, executes them in per-source lanes, parses the results,
// correlates the findings and persists the manifest and reports.
package lookup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/internal/httpclient"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/policy"
	"github.com/teranos/footprint/report"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/storage"
	"github.com/teranos/footprint/tools"
)

// Warning stages
const (
	StageFetch   = "fetch"
	StageStore   = "store"
	StageParse   = "parse"
	StageExecute = "execute"
)

// timeNow is replaced in tests
var timeNow = time.Now

// Options configures one lookup run
type Options struct {
	Inputs   schema.LookupInputs
	Registry *sources.Registry
	Config   *am.Config // nil = am.Default()

	// Transport performs HTTP fetches. nil = SSRF-guarded client from Config.
	Transport fetch.Transport
	// RobotsFetcher loads robots.txt. nil = SSRF-guarded client from Config.
	// Unused when robots.enabled is false.
	RobotsFetcher policy.RobotsFetcher
	// Runner executes tool-transport sources. nil = tools.ExecRunner.
	Runner tools.Runner

	Emitter Emitter // nil = NopEmitter
	Logger  *zap.SugaredLogger
}

// Paths locates the files a run wrote
type Paths struct {
	RunDir         string `json:"run_dir"`
	Manifest       string `json:"manifest"`
	ReportJSON     string `json:"report_json"`
	ReportMarkdown string `json:"report_markdown"`
}

// Result is the in-memory outcome of a run
type Result struct {
	RunID     string
	Plan      []PlannedRequest
	Findings  []schema.Finding // plan order
	Entities  []schema.Entity
	Warnings  []schema.Warning // plan order
	Cancelled bool
	Console   string // plain console report
	Paths     Paths
	Manifest  *schema.RunManifest
}

// requestOutput is what one planned request contributed
type requestOutput struct {
	done     bool
	findings []schema.Finding
	warnings []schema.Warning
}

type pipeline struct {
	opts    Options
	cfg     *am.Config
	paths   storage.RunPaths
	fetcher *fetch.Fetcher
	runner  tools.Runner
	emitter Emitter
	logger  *zap.SugaredLogger
}

// Run executes a lookup.
//
// Planning errors abort before anything is written. Once the run directory
// exists, per-request failures become warnings and the run continues. If ctx
// is cancelled or the run deadline passes, unstarted requests are dropped and
// the findings collected so far are still correlated and written, with
// Cancelled set.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Registry == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "lookup needs a source registry")
	}
	if opts.Inputs.IsEmpty() {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidInput, "no lookup inputs"),
			"pass at least one of --username, --email, --phone or --name")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = am.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("lookup")
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = NopEmitter{}
	}

	plan, err := BuildPlan(opts.Inputs, opts.Registry)
	if err != nil {
		return nil, err
	}

	paths, err := storage.CreateRunDir(cfg.Output.RunsDir)
	if err != nil {
		return nil, errors.WithHint(err, "check output.runs_dir in am.toml")
	}
	runID := paths.RunID()
	ctx = logger.WithRunID(ctx, runID)
	log = logger.LoggerFromContext(ctx, log)

	started := timeNow()
	manifest := &schema.RunManifest{
		RunID:     runID,
		Inputs:    opts.Inputs.Fields(),
		Sources:   PlanSources(plan),
		StartedAt: schema.Timestamp(started),
		Warnings:  []schema.Warning{},
		Config:    cfg.Effective(),
	}

	p := &pipeline{
		opts:    opts,
		cfg:     cfg,
		paths:   paths,
		fetcher: newFetcher(opts, cfg, log),
		runner:  opts.Runner,
		emitter: emitter,
		logger:  log,
	}
	if p.runner == nil {
		p.runner = tools.NewExecRunner(nil)
	}

	runCtx := ctx
	if timeout := cfg.Lookup.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	emitter.EmitStage("plan", fmt.Sprintf("%d request(s) across %d source(s)", len(plan), len(laneOrder(plan))))
	log.Infow("Lookup started", logger.FieldCount, len(plan), logger.FieldWorkers, cfg.GetWorkers())

	outputs := p.execute(runCtx, plan)
	cancelled := runCtx.Err() != nil

	var findings []schema.Finding
	var warnings []schema.Warning
	for _, out := range outputs {
		findings = append(findings, out.findings...)
		warnings = append(warnings, out.warnings...)
	}
	if findings == nil {
		findings = []schema.Finding{}
	}

	emitter.EmitStage("correlate", fmt.Sprintf("%d finding(s)", len(findings)))
	entities := Correlate(findings)

	manifest.Cancelled = cancelled
	if warnings != nil {
		manifest.Warnings = warnings
	}
	manifest.Finish(timeNow())

	data := report.Data{RunID: runID, Sources: manifest.Sources, Findings: findings, Warnings: warnings}
	result := &Result{
		RunID:     runID,
		Plan:      plan,
		Findings:  findings,
		Entities:  entities,
		Warnings:  warnings,
		Cancelled: cancelled,
		Console:   report.Console(data, false),
		Manifest:  manifest,
	}
	result.Paths, err = writeRun(paths, manifest, data)
	if err != nil {
		return result, err
	}

	emitter.EmitComplete(Summary{
		RunID:     runID,
		RunDir:    paths.RunDir,
		Requests:  len(plan),
		Findings:  len(findings),
		Entities:  len(entities),
		Warnings:  len(warnings),
		Cancelled: cancelled,
	})
	log.Infow("Lookup finished",
		logger.FieldFindings, len(findings),
		logger.FieldWarnings, len(warnings),
		"cancelled", cancelled,
		logger.FieldDurationMS, timeNow().Sub(started).Milliseconds())
	return result, nil
}

func newFetcher(opts Options, cfg *am.Config, log *zap.SugaredLogger) *fetch.Fetcher {
	var client *httpclient.SaferClient
	guarded := func() *httpclient.SaferClient {
		if client == nil {
			client = httpclient.New(httpclient.Options{
				Timeout:         cfg.HTTP.Timeout(),
				AllowPrivateIPs: !cfg.HTTP.BlockPrivateIPs,
			})
		}
		return client
	}

	transport := opts.Transport
	if transport == nil {
		transport = fetch.HTTPTransport(guarded())
	}

	fetchOpts := fetch.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout(),
		Throttle:  policy.NewRateLimiter(cfg.RateLimit.MinInterval()),
		Transport: transport,
		Logger:    log.Named("fetch"),
	}
	if cfg.Robots.Enabled {
		robotsFetch := opts.RobotsFetcher
		if robotsFetch == nil {
			robotsFetch = fetch.RobotsFetcher(guarded(), cfg.HTTP.UserAgent, cfg.Robots.Timeout())
		}
		fetchOpts.Robots = policy.NewRobotsPolicy(robotsFetch, log.Named("robots"))
	}
	return fetch.New(fetchOpts)
}

// laneOrder groups plan indices by source id. Lanes are ordered by the first
// appearance of their source and keep plan order within.
func laneOrder(plan []PlannedRequest) [][]int {
	var lanes [][]int
	bySource := make(map[string]int)
	for i, req := range plan {
		lane, ok := bySource[req.SourceID]
		if !ok {
			lane = len(lanes)
			bySource[req.SourceID] = lane
			lanes = append(lanes, nil)
		}
		lanes[lane] = append(lanes[lane], i)
	}
	return lanes
}

// execute runs every lane and returns one output per planned request.
// Lanes run concurrently up to the worker limit; a lane is sequential, so
// requests sharing a throttling key never race.
func (p *pipeline) execute(ctx context.Context, plan []PlannedRequest) []requestOutput {
	outputs := make([]requestOutput, len(plan))
	lanes := laneOrder(plan)
	p.emitter.EmitStage("fetch", fmt.Sprintf("%d lane(s), %d worker(s)", len(lanes), p.cfg.GetWorkers()))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.cfg.GetWorkers())
	for _, lane := range lanes {
		g.Go(func() error {
			for _, idx := range lane {
				if ctx.Err() != nil {
					return nil
				}
				out := p.process(ctx, plan[idx])
				mu.Lock()
				outputs[idx] = out
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // lanes never fail; every error is a warning

	if ctx.Err() != nil {
		skipped := 0
		for _, out := range outputs {
			if !out.done {
				skipped++
			}
		}
		p.logger.Warnw("Run cancelled, dropping unstarted requests",
			logger.FieldCount, skipped, logger.FieldError, ctx.Err().Error())
	}
	return outputs
}

// process carries out one planned request
func (p *pipeline) process(ctx context.Context, req PlannedRequest) requestOutput {
	out := requestOutput{done: true}
	start := timeNow()
	log := p.logger.With(logger.FieldSourceID, req.SourceID, logger.FieldURL, req.URL,
		logger.FieldTransport, req.Transport, logger.FieldInputType, req.InputType)

	src, ok := p.opts.Registry.Get(req.SourceID)
	if !ok {
		log.Debugw("Planned source no longer registered, skipping")
		return out
	}

	warn := func(stage, msg string) {
		w := schema.Warning{SourceID: req.SourceID, URL: req.URL, Stage: stage, Message: msg}
		out.warnings = append(out.warnings, w)
		p.emitter.EmitWarning(w)
		log.Warnw("Source failed, continuing", logger.FieldStage, stage, logger.FieldError, msg)
	}

	var outcome Outcome
	if req.Transport == sources.TransportTool {
		findings, err := p.executeTool(ctx, src, req)
		if err != nil {
			outcome.Error = err.Error()
			if ctx.Err() == nil {
				warn(StageExecute, err.Error())
			}
		}
		out.findings = findings
	} else {
		result := p.fetcher.Get(ctx, req.URL, req.SourceID, req.Headers)
		outcome.StatusCode = result.StatusCode
		outcome.Skipped = result.Skipped
		outcome.Error = result.Error
		if result.Error != "" && ctx.Err() == nil {
			warn(StageFetch, result.Error)
		}

		var refs []sources.RawRef
		if len(result.Content) > 0 {
			path, err := storage.SaveRawArtifact(p.paths, result.URL, result.Content)
			if err != nil {
				warn(StageStore, err.Error())
			} else {
				refs = append(refs, sources.RawRef{Path: path, Hash: storage.ContentHash(result.Content)})
			}
		}

		findings, err := parse(src, result, p.opts.Inputs, refs)
		if err != nil {
			warn(StageParse, err.Error())
		}
		out.findings = findings
	}

	outcome.Findings = len(out.findings)
	outcome.Duration = timeNow().Sub(start)
	p.emitter.EmitRequest(req, outcome)
	return out
}

func (p *pipeline) executeTool(ctx context.Context, src sources.Source, req PlannedRequest) (findings []schema.Finding, err error) {
	exec, ok := sources.CanExecute(src)
	if !ok {
		return nil, errors.Newf("source %q planned a tool request but cannot execute tools", src.ID())
	}
	defer func() {
		if r := recover(); r != nil {
			findings, err = nil, errors.Newf("execute panicked: %v", r)
		}
	}()
	return exec.Execute(ctx, sources.ExecRequest{
		SourceID: req.SourceID,
		Request:  req.RequestSpec,
		Inputs:   p.opts.Inputs,
		Paths:    p.paths,
		Config:   p.cfg,
		Runner:   p.runner,
	})
}

func parse(src sources.Source, result fetch.FetchResult, in schema.LookupInputs, refs []sources.RawRef) (findings []schema.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings, err = nil, errors.Newf("parse panicked: %v", r)
		}
	}()
	return src.Parse(result, in, refs)
}

// writeRun persists the manifest and both reports. Each file is written
// atomically, so a failure never leaves a torn file behind.
func writeRun(paths storage.RunPaths, manifest *schema.RunManifest, data report.Data) (Paths, error) {
	out := Paths{RunDir: paths.RunDir}

	manifestPath, err := storage.WriteManifest(paths, *manifest)
	if err != nil {
		return out, err
	}
	out.Manifest = manifestPath

	jsonReport, err := report.JSON(data)
	if err != nil {
		return out, err
	}
	if out.ReportJSON, err = storage.WriteText(paths.RunDir, storage.JSONReportFile, jsonReport); err != nil {
		return out, err
	}
	if out.ReportMarkdown, err = storage.WriteText(paths.RunDir, storage.MarkdownFile, report.Markdown(data)); err != nil {
		return out, err
	}
	return out, nil
}
