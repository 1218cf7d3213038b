package toolsrc

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/tools"
)

// NewMaigret returns the maigret source, which runs maigret with its simple JSON report
func NewMaigret() sources.Source {
	return newToolSource("maigret", "Maigret", maigretCommand, ParseMaigretJSON)
}

func maigretCommand(cfg *am.Config, username, outDir string) (tools.Command, string, error) {
	base, err := filepath.Abs(cfg.Tools.MaigretPath)
	if err != nil {
		return tools.Command{}, "", errors.Wrapf(err, "resolve maigret_path %q", cfg.Tools.MaigretPath)
	}
	args, err := pythonCommand(cfg,
		"-m", "maigret",
		username,
		"--json", "simple",
		"--folderoutput", outDir,
	)
	if err != nil {
		return tools.Command{}, "", err
	}
	return tools.Command{
		Args: args,
		Dir:  base,
		Env:  toolEnv(cfg, base),
	}, filepath.Join(outDir, "report_"+username+"_simple.json"), nil
}

type maigretEntry struct {
	Status *struct {
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"status"`
}

// ParseMaigretJSON reads maigret's simple report, a map of site name to
// check result. Every site whose status carries a URL becomes a finding;
// sites are emitted in name order.
func ParseMaigretJSON(sourceID, username, path string, content []byte) ([]schema.Finding, error) {
	var payload map[string]maigretEntry
	if err := json.Unmarshal(content, &payload); err != nil {
		return nil, errors.Wrap(err, "decode maigret report")
	}
	sites := make([]string, 0, len(payload))
	for site := range payload {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	var findings []schema.Finding
	for _, site := range sites {
		status := payload[site].Status
		if status == nil || status.URL == "" {
			continue
		}
		if status.Status != "" && status.Status != "Claimed" {
			continue
		}
		findings = append(findings,
			siteFinding(sourceID, sourceID+".json", username, site, status.URL, path, content))
	}
	return findings, nil
}
