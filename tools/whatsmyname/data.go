// Package whatsmyname checks a username against the WhatsMyName site list.
//
// The site list (wmn-data.json) is loaded from a local path or any go-getter
// source. Each site declares how to recognize an existing account (m_code,
// m_string) and a missing one (e_code, e_string).
package whatsmyname

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
)

// DataFileName is the file name of the site list in the WhatsMyName repository
const DataFileName = "wmn-data.json"

// AccountPlaceholder is substituted with the username in site templates
const AccountPlaceholder = "{account}"

// Site is one entry of wmn-data.json
type Site struct {
	Name      string            `json:"name"`
	URICheck  string            `json:"uri_check"`
	URIPretty string            `json:"uri_pretty,omitempty"`
	PostBody  string            `json:"post_body,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	ECode     *int              `json:"e_code,omitempty"`
	EString   string            `json:"e_string,omitempty"`
	MCode     *int              `json:"m_code,omitempty"`
	MString   string            `json:"m_string,omitempty"`
	Category  string            `json:"cat,omitempty"`
}

// CheckURL renders uri_check for username
func (s Site) CheckURL(username string) string {
	return strings.ReplaceAll(s.URICheck, AccountPlaceholder, username)
}

// PrettyURL renders uri_pretty, falling back to the check URL
func (s Site) PrettyURL(username string) string {
	if s.URIPretty == "" {
		return s.CheckURL(username)
	}
	return strings.ReplaceAll(s.URIPretty, AccountPlaceholder, username)
}

// Body renders post_body for username
func (s Site) Body(username string) string {
	return strings.ReplaceAll(s.PostBody, AccountPlaceholder, username)
}

// Data is the decoded site list
type Data struct {
	Sites []Site `json:"sites"`
}

// LoadData reads the site list from src: a local file, a directory holding
// wmn-data.json, or any go-getter address (https, git::, s3::, ...).
func LoadData(ctx context.Context, src string, log *zap.SugaredLogger) (*Data, error) {
	if log == nil {
		log = logger.ComponentLogger("whatsmyname")
	}
	if src == "" {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidInput, "no WhatsMyName data source"),
			"pass --data or set tools.whatsmyname_data")
	}

	path, cleanup, err := resolve(ctx, src, log)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &data, nil
}

// resolve returns a local file path for src, fetching it when remote
func resolve(ctx context.Context, src string, log *zap.SugaredLogger) (string, func(), error) {
	noop := func() {}

	if info, err := os.Stat(src); err == nil {
		if info.IsDir() {
			return filepath.Join(src, DataFileName), noop, nil
		}
		return src, noop, nil
	}

	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return "", noop, errors.Wrapf(err, "detect source type of %q", src)
	}
	if u, err := url.Parse(detected); err == nil && u.Scheme == "file" {
		return "", noop, errors.NewNotFoundError("WhatsMyName data %s", src)
	}

	tempDir, err := os.MkdirTemp("", "footprint-wmn-*")
	if err != nil {
		return "", noop, errors.Wrap(err, "create temp dir")
	}
	cleanup := func() { os.RemoveAll(tempDir) }
	dst := filepath.Join(tempDir, DataFileName)

	log.Infow("Fetching WhatsMyName data", "detected", detected, logger.FieldPath, dst)
	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}
	if err := client.Get(); err != nil {
		cleanup()
		return "", noop, errors.Wrapf(err, "fetch WhatsMyName data from %s", src)
	}
	return dst, cleanup, nil
}
