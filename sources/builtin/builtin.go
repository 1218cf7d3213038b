// Package builtin assembles the default source registry.
package builtin

import (
	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/sources"
	"github.com/teranos/footprint/sources/developer"
	"github.com/teranos/footprint/sources/directories"
	"github.com/teranos/footprint/sources/social"
	"github.com/teranos/footprint/sources/toolsrc"
)

// All returns every built-in source plus the entries of the optional extra
// catalog at catalogPath, unfiltered. Order is fixed: github, the embedded
// catalog, the social sources, the directories, the tools, then extras.
func All(catalogPath string) (*sources.Registry, error) {
	catalog, err := sources.EmbeddedCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "embedded catalog")
	}

	srcs := []sources.Source{developer.NewGitHub()}
	for _, src := range catalog {
		srcs = append(srcs, src)
	}
	srcs = append(srcs,
		social.NewMastodon(),
		social.NewBluesky(),
		directories.NewOpenAlex(),
		directories.NewORCID(),
		directories.NewWikidata(),
		toolsrc.NewSherlock(),
		toolsrc.NewMaigret(),
		toolsrc.NewWhatsMyName(),
	)

	if catalogPath != "" {
		extra, err := sources.LoadCatalogFile(catalogPath)
		if err != nil {
			return nil, errors.WithHint(err, "check sources.catalog_path in am.toml")
		}
		for _, src := range extra {
			srcs = append(srcs, src)
		}
	}

	return sources.NewRegistry(srcs...)
}

// Registry returns the sources selected by cfg: All, restricted to
// sources.enabled when non-empty, minus sources.disabled. Ids in either list
// that name no source are logged and ignored.
func Registry(cfg *am.Config) (*sources.Registry, error) {
	all, err := All(cfg.Sources.CatalogPath)
	if err != nil {
		return nil, err
	}

	log := logger.ComponentLogger("sources")
	for _, id := range all.Unknown(cfg.Sources.Enabled) {
		log.Warnw("enabled source does not exist", logger.FieldSourceID, id)
	}
	for _, id := range all.Unknown(cfg.Sources.Disabled) {
		log.Warnw("disabled source does not exist", logger.FieldSourceID, id)
	}

	return all.Filtered(cfg.Sources.Enabled, cfg.Sources.Disabled), nil
}
