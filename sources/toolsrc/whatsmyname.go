package toolsrc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/tools"
	"github.com/teranos/footprint/tools/whatsmyname"
)

// executable locates the running footprint binary; replaced in tests
var executable = os.Executable

// NewWhatsMyName returns the WhatsMyName source. It re-invokes the footprint
// binary with `tools whatsmyname` so the site checks run in their own process
// under the tool timeout.
func NewWhatsMyName() sources.Source {
	return newToolSource("whatsmyname", "WhatsMyName", whatsMyNameCommand, ParseWhatsMyNameReport)
}

// WhatsMyNameData returns the configured data location: whatsmyname_data when
// set, otherwise wmn-data.json inside whatsmyname_path.
func WhatsMyNameData(cfg *am.Config) string {
	if cfg.Tools.WhatsMyNameData != "" {
		return cfg.Tools.WhatsMyNameData
	}
	return filepath.Join(cfg.Tools.WhatsMyNamePath, whatsmyname.DataFileName)
}

func whatsMyNameCommand(cfg *am.Config, username, outDir string) (tools.Command, string, error) {
	self, err := executable()
	if err != nil {
		return tools.Command{}, "", errors.Wrap(err, "locate footprint binary")
	}
	outFile := filepath.Join(outDir, "report_"+username+".json")
	return tools.Command{
		Args: []string{
			self, "tools", "whatsmyname",
			"--data", WhatsMyNameData(cfg),
			"--username", username,
			"--output", outFile,
			"--timeout", strconv.Itoa(cfg.HTTP.TimeoutSeconds),
		},
		Env: cfg.Tools.Env,
	}, outFile, nil
}

// ParseWhatsMyNameReport reads the report written by `footprint tools whatsmyname`
func ParseWhatsMyNameReport(sourceID, username, path string, content []byte) ([]schema.Finding, error) {
	var report whatsmyname.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, errors.Wrap(err, "decode whatsmyname report")
	}
	var findings []schema.Finding
	for _, r := range report.Results {
		if !r.Matched || r.URL == "" {
			continue
		}
		findings = append(findings,
			siteFinding(sourceID, sourceID+".json", username, r.SiteName, r.URL, path, content))
	}
	return findings, nil
}
