// Package cli implements the sunrise command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database"
	"github.com/sunrise-events/sunrise/internal/entrypoint"
	"github.com/sunrise-events/sunrise/internal/logging"
)

// app carries state shared by every subcommand.
type app struct {
	version string
	dbPath  string
	cfg     *config.Config
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version}

	root := &cobra.Command{
		Use:           "sunrise",
		Short:         "Contact import and management service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.NewConfig()
			if a.dbPath != "" {
				a.cfg.Database.Path = a.dbPath
			}
			logging.Init(logging.Config{
				Level:  a.cfg.Logging.Level,
				Format: a.cfg.Logging.Format,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (overrides DATABASE_PATH)")

	root.AddCommand(
		newServeCommand(a),
		newImportCommand(a),
		newUserCommand(a),
	)
	return root
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(a.cfg, a.version)
		},
	}
}

// openServices opens the database quietly and wires the domain services.
// The returned close function waits for pending audit writes first.
func (a *app) openServices() (*entrypoint.Services, func(), error) {
	db, err := database.NewSilentDatabase(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	services := entrypoint.NewServices(db, a.cfg)
	closeFn := func() {
		services.Audit.Wait()
		db.Close()
	}
	return services, closeFn, nil
}
