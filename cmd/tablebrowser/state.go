package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/database/repository"
	"github.com/jask/tablebrowser/internal/prefs"
	"github.com/jask/tablebrowser/internal/service"
	"github.com/jask/tablebrowser/internal/testdata"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect, move or clear saved view state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Describe the saved session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup("-")
				if err != nil {
					return err
				}
				defer e.Close()

				version, dirty, err := database.SchemaVersion(e.cfg.Database.Path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "state db %s (schema version %d", e.cfg.Database.Path, version)
				if dirty {
					fmt.Fprint(cmd.OutOrStdout(), ", dirty")
				}
				fmt.Fprintln(cmd.OutOrStdout(), ")")

				info, err := e.repo.Info(cmd.Context())
				if errors.Is(err, repository.ErrNoSnapshot) {
					fmt.Fprintln(cmd.OutOrStdout(), "no saved view state")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session %s saved %s: %d pages, %d tabs\n",
					info.ID, info.SavedAt.Local().Format(time.DateTime), info.Pages, info.Tabs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write the saved session to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup("-")
				if err != nil {
					return err
				}
				defer e.Close()

				snap, err := e.repo.Latest(cmd.Context())
				if err != nil {
					return err
				}
				if err := prefs.Export(args[0], snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", len(snap.Pages), args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Replace the saved session with one read from a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup("-")
				if err != nil {
					return err
				}
				defer e.Close()

				snap, err := prefs.Import(args[0])
				if err != nil {
					return err
				}
				e.registry.Restore(snap)
				if err := e.state.Persist(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d pages from %s\n", len(e.registry.Pages()), args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete all saved view state",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup("-")
				if err != nil {
					return err
				}
				defer e.Close()

				m := &service.MaintenanceService{DB: e.db}
				if err := m.Reset(cmd.Context()); err != nil {
					return err
				}
				e.log.Info().Msg("view state cleared")
				fmt.Fprintln(cmd.OutOrStdout(), "view state cleared")
				return nil
			},
		},
	)
	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		rows int
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "demo <file>",
		Short: "Create a sample database to browse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			db, err := database.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := testdata.Seed(cmd.Context(), db, rows, seed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s with %d tables and %d views\n", path, len(testdata.Tables), len(testdata.Views))
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 25, "rows per table")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}
