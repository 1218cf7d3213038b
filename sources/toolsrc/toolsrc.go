// Package toolsrc holds the tool-transport sources. Each one runs an external
// username scanner through tools.Runner, then parses the file the scanner left
// under raw/tools/<source_id>/.
package toolsrc

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/fetch"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/storage"
	"github.com/teranos/footprint/tools"
)

// commandFunc builds the scanner invocation and names the file it will write
type commandFunc func(cfg *am.Config, username, outDir string) (tools.Command, string, error)

// parseFunc turns the scanner output into findings
type parseFunc func(sourceID, username, path string, content []byte) ([]schema.Finding, error)

type toolSource struct {
	sources.Info
	command commandFunc
	parse   parseFunc
	logger  *zap.SugaredLogger
}

func newToolSource(id, name string, command commandFunc, parse parseFunc) *toolSource {
	return &toolSource{
		Info: sources.Info{
			SourceID:       id,
			SourceName:     name,
			SourceCategory: sources.CategoryTools,
			Inputs:         []schema.InputType{schema.InputUsername},
		},
		command: command,
		parse:   parse,
		logger:  logger.ComponentLogger("toolsrc").With(logger.FieldSourceID, id),
	}
}

// BuildRequests plans one synthetic tool:// request per username
func (s *toolSource) BuildRequests(in schema.LookupInputs) ([]sources.RequestSpec, error) {
	if in.Username == "" {
		return nil, nil
	}
	return []sources.RequestSpec{{
		URL:       sources.ToolURL(s.SourceID, in.Username),
		InputType: schema.InputUsername,
		Transport: sources.TransportTool,
	}}, nil
}

// Parse is a no-op: tool sources produce findings from Execute
func (s *toolSource) Parse(fetch.FetchResult, schema.LookupInputs, []sources.RawRef) ([]schema.Finding, error) {
	return nil, nil
}

// Execute runs the scanner and parses its output file.
// A scanner that leaves no output file yields zero findings.
func (s *toolSource) Execute(ctx context.Context, req sources.ExecRequest) ([]schema.Finding, error) {
	username := req.Inputs.Username
	if username == "" {
		return nil, nil
	}
	if req.Runner == nil {
		return nil, errors.Wrapf(errors.ErrContractViolation, "%s: no command runner", s.SourceID)
	}
	cfg := req.Config
	if cfg == nil {
		cfg = am.Default()
	}

	outDir, err := req.Paths.ToolDir(s.SourceID)
	if err != nil {
		return nil, err
	}
	cmd, outFile, err := s.command(cfg, username, outDir)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: build command", s.SourceID)
	}
	if cmd.Timeout == 0 {
		cmd.Timeout = cfg.Tools.Timeout()
	}

	res := req.Runner.Run(ctx, cmd)
	if res.Failed() || res.ExitCode != 0 {
		s.logger.Warnw("scanner did not finish cleanly",
			logger.FieldCommand, res.Command,
			logger.FieldExitCode, res.ExitCode,
			logger.FieldError, res.Error,
			"stderr", tail(res.Stderr, 512))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: scanner interrupted", s.SourceID)
	}

	content, err := os.ReadFile(outFile)
	if os.IsNotExist(err) {
		s.logger.Infow("scanner produced no output", logger.FieldPath, outFile)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read output %s", s.SourceID, outFile)
	}
	findings, err := s.parse(s.SourceID, username, outFile, content)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: parse %s", s.SourceID, outFile)
	}
	s.logger.Debugw("scanner finished", logger.FieldFindings, len(findings), logger.FieldPath, outFile)
	return findings, nil
}

// siteFinding builds the finding for one site a scanner reported as claimed
func siteFinding(sourceID, parserID, username, site, profileURL, path string, content []byte) schema.Finding {
	key := site
	if key == "" {
		key = profileURL
	}
	refs := []sources.RawRef{{Path: path, Hash: storage.ContentHash(content)}}
	evidence := sources.EvidenceFor(sourceID, profileURL, parserID, refs, schema.StringPtr(site))
	return schema.Finding{
		SourceID: sourceID,
		Type:     schema.FindingProfile,
		Entity: schema.Entity{
			EntityID:    sourceID + ":" + username + ":" + key,
			DisplayName: schema.StringPtr(username),
			ProfileURLs: []string{profileURL},
			Identifiers: []schema.Identifier{{
				Type:     string(schema.InputUsername),
				Value:    username,
				Evidence: evidence,
			}},
			Evidence: evidence,
		},
		Artifacts:  []schema.Artifact{},
		Confidence: schema.ConfidenceMedium,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// pythonCommand splits the configured interpreter and appends args
func pythonCommand(cfg *am.Config, args ...string) ([]string, error) {
	exe, err := tools.SplitExecutable(cfg.Tools.PythonExecutable)
	if err != nil {
		return nil, err
	}
	return append(exe, args...), nil
}
