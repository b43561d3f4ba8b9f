package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/services"
)

// withApp loads configuration, wires the app without realtime events and
// runs fn against it.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// resolveTournament returns id when set and the latest tournament otherwise.
func (a *app) resolveTournament(ctx context.Context, id int) (int, error) {
	if id > 0 {
		return id, nil
	}
	t, err := a.tournaments.LatestTournament(ctx)
	if err != nil {
		return 0, fmt.Errorf("no --tournament given and no latest tournament: %w", err)
	}
	a.logger.Info("using latest tournament", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t.ID, nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and the standings view",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := db.Migrate(cmd.Context(), a.db, a.cfg.DatabaseDriver); err != nil {
					return err
				}
				newOutput(cmd.OutOrStdout(), opts.format).message("schema applied")
				return nil
			})
		},
	}
}

func newPairCommand(opts *rootOptions) *cobra.Command {
	var (
		tournamentID int
		commit       bool
	)
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Compute the next Swiss round",
		Long:  "Compute the next Swiss round. Without --commit the pairings are only printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(cmd, opts, func(a *app) error {
				id, err := a.resolveTournament(ctx, tournamentID)
				if err != nil {
					return err
				}
				pairFn := a.rounds.PreviewPairings
				if commit {
					pairFn = a.rounds.PairNextRound
				}
				round, err := pairFn(ctx, id)
				if err != nil {
					return err
				}
				newOutput(cmd.OutOrStdout(), opts.format).round(round)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&tournamentID, "tournament", "t", 0, "tournament id (default: latest)")
	cmd.Flags().BoolVar(&commit, "commit", false, "store the round")
	return cmd
}

func newStandingsCommand(opts *rootOptions) *cobra.Command {
	var tournamentID int
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the standings of a tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(cmd, opts, func(a *app) error {
				id, err := a.resolveTournament(ctx, tournamentID)
				if err != nil {
					return err
				}
				rows, err := a.standings.GetStandings(ctx, id)
				if err != nil {
					return err
				}
				newOutput(cmd.OutOrStdout(), opts.format).standings(rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&tournamentID, "tournament", "t", 0, "tournament id (default: latest)")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var tournamentID int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload the standings of a tournament as CSV to the R2 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(cmd, opts, func(a *app) error {
				id, err := a.resolveTournament(ctx, tournamentID)
				if err != nil {
					return err
				}
				export, err := a.exports.ExportStandings(ctx, id)
				if err != nil {
					return err
				}
				out := newOutput(cmd.OutOrStdout(), opts.format)
				if opts.format == "json" {
					out.printJSON(export)
					return nil
				}
				out.message(export.URL)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&tournamentID, "tournament", "t", 0, "tournament id (default: latest)")
	return cmd
}

func newResetMatchesCommand(opts *rootOptions) *cobra.Command {
	var tournamentID int
	cmd := &cobra.Command{
		Use:   "reset-matches",
		Short: "Delete every match, result and bye of a tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(cmd, opts, func(a *app) error {
				id, err := a.resolveTournament(ctx, tournamentID)
				if err != nil {
					return err
				}
				deleted, err := a.matches.DeleteMatches(ctx, id)
				if err != nil {
					return err
				}
				newOutput(cmd.OutOrStdout(), opts.format).message(fmt.Sprintf("deleted %d matches of tournament %d", deleted, id))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&tournamentID, "tournament", "t", 0, "tournament id (default: latest)")
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Print a bcrypt hash for ADMIN_PASSWORD_HASH. The password is read from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(string(data), "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
