package toolsrc

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/tools"
)

// NewSherlock returns the sherlock source, which runs sherlock_project with CSV output
func NewSherlock() sources.Source {
	return newToolSource("sherlock", "Sherlock", sherlockCommand, ParseSherlockCSV)
}

func sherlockCommand(cfg *am.Config, username, outDir string) (tools.Command, string, error) {
	base, err := filepath.Abs(cfg.Tools.SherlockPath)
	if err != nil {
		return tools.Command{}, "", errors.Wrapf(err, "resolve sherlock_path %q", cfg.Tools.SherlockPath)
	}
	args, err := pythonCommand(cfg,
		"-m", "sherlock_project",
		"--csv",
		"--folderoutput", outDir,
		"--no-color",
		"--local",
		"--timeout", strconv.Itoa(cfg.Tools.TimeoutSeconds),
		username,
	)
	if err != nil {
		return tools.Command{}, "", err
	}
	return tools.Command{
		Args: args,
		Dir:  base,
		Env:  toolEnv(cfg, base),
	}, filepath.Join(outDir, username+".csv"), nil
}

// ParseSherlockCSV reads sherlock's CSV report. Rows whose exists column is
// not truthy, or that carry no URL, are skipped.
func ParseSherlockCSV(sourceID, username, path string, content []byte) ([]schema.Finding, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var findings []schema.Finding
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv row")
		}
		if !claimed(field(row, "exists")) {
			continue
		}
		url := field(row, "url_user")
		if url == "" {
			url = field(row, "url")
		}
		if url == "" {
			continue
		}
		findings = append(findings,
			siteFinding(sourceID, sourceID+".csv", username, field(row, "name"), url, path, content))
	}
	return findings, nil
}

// claimed accepts the boolean spellings and sherlock's own "Claimed" status
func claimed(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "claimed":
		return true
	}
	return false
}

// toolEnv layers PYTHONPATH over tools.env
func toolEnv(cfg *am.Config, pythonPath string) map[string]string {
	env := make(map[string]string, len(cfg.Tools.Env)+1)
	for k, v := range cfg.Tools.Env {
		env[k] = v
	}
	env["PYTHONPATH"] = pythonPath
	return env
}
