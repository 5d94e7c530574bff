// Command gameday browses the MLB Gameday directory tree and keeps a local
// player identity store in sync with it.
//
// Usage:
//
//	gameday games --date 2015-04-05 --team nya
//	gameday sync --date 2015-04-05
//	gameday backfill --start 2015-04-05 --end 2015-04-12
//	gameday stats Yasiel Puig --season 2015 --stats HR,AVG
//	gameday plays 2015_04_05_lanmlb_sdnmlb_1
//	gameday league AL --division East
//	gameday health
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fortuna/gameday/internal/backfill"
	"github.com/fortuna/gameday/internal/config"
	"github.com/fortuna/gameday/pkg/literal"
	"github.com/fortuna/gameday/pkg/reference"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var quiet bool
	root := &cobra.Command{
		Use:          "gameday",
		Short:        "MLB Gameday discovery and identity sync",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress logging")

	root.AddCommand(gamesCmd())
	root.AddCommand(rostersCmd())
	root.AddCommand(attribsCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(backfillCmd())
	root.AddCommand(playerCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(linescoreCmd())
	root.AddCommand(playsCmd())
	root.AddCommand(feedCmd())
	root.AddCommand(leagueCmd())
	root.AddCommand(healthCmd())
	return root
}

// --------------------------------------------------------------------------
// discovery commands
// --------------------------------------------------------------------------

func gamesCmd() *cobra.Command {
	var date, team string
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List the games of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				ids, err := a.discoverer.ListGames(ctx, d, team)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to list (YYYY-MM-DD); empty = today")
	cmd.Flags().StringVar(&team, "team", "", "Team code substring, e.g. nya")
	return cmd
}

func rostersCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "rosters",
		Short: "List the players.xml roster URLs of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				urls, err := a.discoverer.ListPlayerRosterURLs(ctx, d)
				if err != nil {
					return err
				}
				for _, u := range urls {
					fmt.Fprintln(cmd.OutOrStdout(), u)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to list (YYYY-MM-DD); empty = today")
	return cmd
}

func attribsCmd() *cobra.Command {
	var date, team string
	cmd := &cobra.Command{
		Use:   "attribs",
		Short: "Print game.xml attributes for a team's games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				games, err := a.discoverer.GameAttributes(ctx, d, team)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), games)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD); empty = today on the West Coast")
	cmd.Flags().StringVar(&team, "team", "", "Team code substring, e.g. nya")
	return cmd
}

func linescoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "linescore <game-id>",
		Short: "Print the linescore of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameArg(args[0])
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, a *app) error {
				ls, err := a.discoverer.Linescore(ctx, id)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), ls)
			})
		},
	}
}

func playsCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "plays <game-id>",
		Short: "Print the pitch-by-pitch tree of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameArg(args[0])
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, a *app) error {
				game, err := a.discoverer.GameTree(ctx, id)
				if err != nil {
					return err
				}
				if !summary {
					return writeJSON(cmd.OutOrStdout(), game)
				}
				out := cmd.OutOrStdout()
				for _, inn := range game.Innings {
					for _, ab := range inn.AtBats {
						fmt.Fprintf(out, "%s %s: %s (%d pitches)\n", inn.Num, ab.Half, ab.Des, len(ab.Pitches))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "One line per at-bat instead of JSON")
	return cmd
}

func feedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Fetch per-game feeds by game_pk",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "color <game-pk>",
		Short: "Print the color commentary feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				doc, err := a.discoverer.ColorFeed(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), doc)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "exit-velocity <game-pk>",
		Short: "Print tracked batted balls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				rows, err := a.discoverer.ExitVelocity(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// identity commands
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a day's rosters into the identity store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(true, func(ctx context.Context, a *app) error {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				records, err := a.discoverer.FetchRoster(ctx, d)
				if err != nil {
					return err
				}
				players, err := a.reconciler.ReconcileRoster(ctx, records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d roster rows, %d players reconciled\n", len(records), len(players))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to sync (YYYY-MM-DD); empty = today")
	return cmd
}

func backfillCmd() *cobra.Command {
	var season, start, end string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Reconcile rosters across a season or date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildSpec(season, start, end)
			if err != nil {
				return err
			}
			spec.DryRun = dryRun
			return run(true, func(ctx context.Context, a *app) error {
				runner := backfill.NewRunner(a.discoverer, a.reconciler)
				began := time.Now()
				summary, err := runner.Run(ctx, spec, backfill.NewLogReporter(nil, dryRun))
				if err != nil {
					return fmt.Errorf("backfill failed: %w", err)
				}
				log.Printf("Backfill completed in %s", time.Since(began).Round(time.Second))
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season year to backfill, e.g. 2015")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch rosters without writing")
	return cmd
}

func buildSpec(season, start, end string) (backfill.JobSpec, error) {
	switch {
	case season != "":
		year, err := backfill.ParseSeason(season)
		if err != nil {
			return backfill.JobSpec{}, err
		}
		return backfill.SeasonSpec(year), nil
	case start != "" && end != "":
		return backfill.DateRangeSpec(start, end)
	case start != "":
		return backfill.DateRangeSpec(start, start)
	}
	return backfill.JobSpec{}, fmt.Errorf("specify --season or --start/--end")
}

func playerCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "player [first] <last>",
		Short: "Resolve a player by name or remote id",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && len(args) == 0 {
				return fmt.Errorf("give a name or --id")
			}
			return run(true, func(ctx context.Context, a *app) error {
				if id != "" {
					p, err := a.reconciler.ResolveByID(ctx, id)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), p)
				}
				first, last := splitName(args)
				p, err := a.reconciler.ResolveByName(ctx, first, last)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Remote Gameday player id")
	return cmd
}

func statsCmd() *cobra.Command {
	var season int
	var abbrevs string
	cmd := &cobra.Command{
		Use:   "stats [first] <last>",
		Short: "Print a player's season stats",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last := splitName(args)
			return run(true, func(ctx context.Context, a *app) error {
				if abbrevs == "" {
					row, err := a.resolver.GetStatsForResolvedPlayer(ctx, first, last, season)
					if err != nil {
						return err
					}
					out := make(map[string]literal.Value, len(row.Keys()))
					for _, k := range row.Keys() {
						out[k], _ = row.Get(k)
					}
					return writeJSON(cmd.OutOrStdout(), out)
				}
				hitting, pitching, err := a.resolver.GetStatsByName(ctx, first, last, season, strings.Split(abbrevs, ","))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"hitting": hitting, "pitching": pitching})
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "Season year")
	cmd.Flags().StringVar(&abbrevs, "stats", "", "Comma-separated abbreviations, e.g. HR,AVG; empty = full row")
	return cmd
}

func splitName(args []string) (first, last string) {
	if len(args) == 1 {
		return "", args[0]
	}
	return args[0], args[1]
}

// --------------------------------------------------------------------------
// reference data
// --------------------------------------------------------------------------

func leagueCmd() *cobra.Command {
	var division, team string
	cmd := &cobra.Command{
		Use:   "league [name]",
		Short: "Look up leagues, divisions and teams in the reference file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, err := reference.Load(cfg.ReferencePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case team != "":
				t, err := data.Team(team)
				if err != nil {
					return err
				}
				return writeJSON(out, t)
			case len(args) == 0:
				return writeJSON(out, data.Leagues)
			case division != "":
				d, err := data.Division(args[0], division)
				if err != nil {
					return err
				}
				return writeJSON(out, d)
			default:
				l, err := data.League(args[0])
				if err != nil {
					return err
				}
				return writeJSON(out, l)
			}
		},
	}
	cmd.Flags().StringVar(&division, "division", "", "Division within the league, e.g. East")
	cmd.Flags().StringVar(&team, "team", "", "Team name, abbreviation or gameday code")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the configured identity store backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(true, func(ctx context.Context, a *app) error {
				return a.checkHealth(ctx, cmd.OutOrStdout())
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, optional store setup and context cancellation.
func run(withStore bool, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a := newApp(cfg)
	if withStore {
		if err := a.openStore(ctx); err != nil {
			return err
		}
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("closing store: %v", err)
		}
	}()

	return fn(ctx, a)
}
