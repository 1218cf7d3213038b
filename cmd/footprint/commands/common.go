package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/footprint/am"
	"github.com/teranos/footprint/db"
	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
	"github.com/teranos/footprint/schema"
)

// loadConfig honours the root --config flag, falling back to the cascade
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path != "" {
		return am.LoadFromFile(path)
	}
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// verbosity returns the root -v count
func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Root().PersistentFlags().GetCount("verbose")
	return v
}

// inputFlags are the lookup inputs shared by lookup and plan
type inputFlags struct {
	username string
	email    string
	phone    string
	name     string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "Username to look up")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address to look up")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number to look up (normalized to E.164)")
	cmd.Flags().StringVar(&f.name, "name", "", "Full name to look up")
}

func (f *inputFlags) inputs() (schema.LookupInputs, error) {
	in, err := schema.NewLookupInputs(f.username, f.email, f.phone, f.name)
	if err != nil {
		return schema.LookupInputs{}, err
	}
	if in.IsEmpty() {
		return schema.LookupInputs{}, errors.WithHint(
			errors.Wrap(errors.ErrInvalidInput, "no lookup inputs"),
			"pass at least one of --username, --email, --phone or --name")
	}
	return in, nil
}

// openDatabase opens and migrates the run index at database.path
func openDatabase(cfg *am.Config) (*sql.DB, error) {
	if !cfg.Database.Enabled {
		return nil, errors.WithHint(
			errors.New("run index is disabled"),
			"set database.enabled = true in am.toml")
	}
	return db.OpenWithMigrations(cfg.GetDatabasePath(), logger.ComponentLogger("db"))
}
