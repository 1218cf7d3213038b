package sources

import (
	_ "embed"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
)

// CatalogVersionConstraint is the catalog schema_version this build understands
const CatalogVersionConstraint = "^1"

//go:embed catalog.yaml
var embeddedCatalog []byte

type catalogDocument struct {
	SchemaVersion string           `yaml:"schema_version"`
	Sources       []*ProfileSource `yaml:"sources"`
}

// EmbeddedCatalog returns the profile sources compiled into the binary
func EmbeddedCatalog() ([]*ProfileSource, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalogFile reads an additional catalog from disk
func LoadCatalogFile(path string) ([]*ProfileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read source catalog %s", path)
	}
	srcs, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "source catalog %s", path)
	}
	return srcs, nil
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) ([]*ProfileSource, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if err := checkCatalogVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(doc.Sources))
	for i, src := range doc.Sources {
		if src == nil || src.SourceID == "" {
			return nil, errors.Newf("catalog entry %d has no id", i)
		}
		if seen[src.SourceID] {
			return nil, errors.Newf("catalog entry %q is duplicated", src.SourceID)
		}
		seen[src.SourceID] = true

		if !strings.Contains(src.URLTemplate, UsernamePlaceholder) {
			return nil, errors.Newf("catalog entry %q: url_template must contain %s", src.SourceID, UsernamePlaceholder)
		}
		if !strings.HasPrefix(src.URLTemplate, "https://") && !strings.HasPrefix(src.URLTemplate, "http://") {
			return nil, errors.Newf("catalog entry %q: url_template must be http(s)", src.SourceID)
		}
		if src.SourceName == "" {
			src.SourceName = src.SourceID
		}
		if src.SourceCategory == "" {
			src.SourceCategory = CategorySocial
		}
		// profile pages are keyed by username only
		src.Inputs = []schema.InputType{schema.InputUsername}
	}
	return doc.Sources, nil
}

func checkCatalogVersion(raw string) error {
	if raw == "" {
		return errors.New("catalog has no schema_version")
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid catalog schema_version %q", raw)
	}
	constraint, err := semver.NewConstraint(CatalogVersionConstraint)
	if err != nil {
		return errors.Wrap(err, "invalid catalog version constraint")
	}
	if !constraint.Check(version) {
		return errors.WithHintf(
			errors.Newf("catalog schema_version %s is not supported (need %s)", raw, CatalogVersionConstraint),
			"upgrade footprint or convert the catalog to schema_version 1.x")
	}
	return nil
}
