package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/tablebrowser/internal/catalog"
	"github.com/jask/tablebrowser/internal/config"
	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/routes"
	"github.com/jask/tablebrowser/internal/tui"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile   string
		open      string
		noPersist bool
		attach    []string
	)
	root := &cobra.Command{
		Use:   "tablebrowser [db]",
		Short: "Browse the tables of a SQLite database",
		Long: `tablebrowser lists the tables and views of a SQLite database and shows
their columns and rows. Paging, filters, sort order and the list/table
toggle are remembered per page and restored on the next run.

Without an argument the state database itself is browsed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				return os.Setenv("TABLEBROWSER_CONFIG", cfgFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup("")
			if err != nil {
				return err
			}
			defer e.Close()

			path := e.cfg.Database.Path
			if len(args) == 1 {
				path = args[0]
			}
			if open != "" {
				if _, _, err := routes.Default().Match(open); err != nil {
					return err
				}
			}
			target, err := database.OpenReadOnly(path)
			if err != nil {
				return err
			}
			defer target.Close()

			ctx := cmd.Context()
			cat := catalog.New(target, catalog.WithLogger(e.log))
			for _, a := range attach {
				name, file, ok := strings.Cut(a, "=")
				if !ok || name == "" || file == "" {
					return fmt.Errorf("--attach %q: want name=path", a)
				}
				if err := cat.Attach(ctx, name, file); err != nil {
					return err
				}
			}
			persist := e.cfg.State.Persist && !noPersist
			if persist {
				if err := e.state.Restore(ctx); err != nil {
					e.log.Warn().Err(err).Msg("starting with fresh view state")
				}
			}

			app := tui.New(ctx, tui.Deps{
				Registry:           e.registry,
				Catalog:            cat,
				Log:                e.log,
				RowsPerPageOptions: e.cfg.UI.RowsPerPageOptions,
				StartPath:          open,
			})
			e.log.Info().Str("db", path).Bool("persist", persist).Msg("browser started")
			_, runErr := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			e.log.Info().Str("path", app.Path()).Msg("browser stopped")
			return finishRun(ctx, e.state, persist, runErr)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is "+config.Path()+")")
	root.Flags().StringVar(&open, "open", "", "path to open first, e.g. /tables/main/orders")
	root.Flags().BoolVar(&noPersist, "no-persist", false, "neither restore nor save view state")
	root.Flags().StringArrayVar(&attach, "attach", nil, "attach another database as a schema, name=path (repeatable)")

	root.AddCommand(newStateCmd(), newConfigCmd(), newDemoCmd())
	return root
}

type persister interface {
	Persist(ctx context.Context) error
}

// finishRun saves view state once the program has exited. A failed save does
// not hide the program's own error.
func finishRun(ctx context.Context, state persister, persist bool, runErr error) error {
	if runErr != nil {
		runErr = fmt.Errorf("run: %w", runErr)
	}
	if !persist {
		return runErr
	}
	return errors.Join(runErr, state.Persist(ctx))
}
