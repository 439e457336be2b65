// Command fantasyctl runs season maintenance against the configured store.
//
// Usage:
//
//	fantasyctl migrate
//	fantasyctl sweep
//	fantasyctl open-window
//	fantasyctl recalc --gameweek 3 [--manager 12]
//	fantasyctl volumes --gameweek 3
//	fantasyctl seed-rules
//	fantasyctl dev-token --manager 1 --role admin
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DhavalSuthar-24/fantasy/config"
	"github.com/DhavalSuthar-24/fantasy/internal/app"
	"github.com/DhavalSuthar-24/fantasy/pkg/token"
)

func main() {
	root := &cobra.Command{
		Use:           "fantasyctl",
		Short:         "Fantasy league maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(openWindowCmd())
	root.AddCommand(recalcCmd())
	root.AddCommand(volumesCmd())
	root.AddCommand(seedRulesCmd())
	root.AddCommand(devTokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// run loads configuration, builds the application and hands it to fn under a
// context cancelled by SIGINT or SIGTERM.
func run(fn func(ctx context.Context, a *app.App) error) error {
	if err := config.Initialize(); err != nil {
		return err
	}
	cfg := config.GetConfig()
	log := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.Open(cfg, config.DB)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, store, config.DB, log)
	if err != nil {
		return err
	}
	return fn(ctx, a)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --------------------------------------------------------------------------
// schema
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed positions and scoring rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				return a.Migrate(ctx)
			})
		},
	}
}

func seedRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-rules",
		Short: "Write the configured scoring table if none is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				written, err := a.Scoring.SeedRules(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("seeded %d scoring rules\n", written)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// gameweeks
// --------------------------------------------------------------------------

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Advance every gameweek phase that is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				report, err := a.Gameweeks.CheckAndAdvanceGameweekStates(ctx)
				if report != nil {
					if perr := printJSON(report); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}

func openWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-window",
		Short: "Open the oldest upcoming gameweek for transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) error {
				result, err := a.Gameweeks.OpenTransferWindow(ctx)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
}

func recalcCmd() *cobra.Command {
	var gameweekID, managerID uint
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute gameweek points for every manager or one manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameweekID == 0 {
				return fmt.Errorf("--gameweek is required")
			}
			return run(func(ctx context.Context, a *app.App) error {
				if managerID != 0 {
					state, err := a.Scoring.UpdateManagerGameweekPoints(ctx, managerID, gameweekID)
					if err != nil {
						return err
					}
					if state == nil {
						return fmt.Errorf("manager %d has no squad or state in gameweek %d", managerID, gameweekID)
					}
					return printJSON(state)
				}
				summary, err := a.Scoring.RecalculateAllManagerPoints(ctx, gameweekID)
				if summary != nil {
					if perr := printJSON(summary); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().UintVar(&gameweekID, "gameweek", 0, "Gameweek ID")
	cmd.Flags().UintVar(&managerID, "manager", 0, "Only this manager")
	return cmd
}

func volumesCmd() *cobra.Command {
	var gameweekID uint
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "Recount transfers in and out for a gameweek",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameweekID == 0 {
				return fmt.Errorf("--gameweek is required")
			}
			return run(func(ctx context.Context, a *app.App) error {
				report, err := a.Market.RefreshTransferVolumes(ctx, gameweekID)
				if err != nil {
					return err
				}
				return printJSON(report)
			})
		},
	}
	cmd.Flags().UintVar(&gameweekID, "gameweek", 0, "Gameweek ID")
	return cmd
}

// --------------------------------------------------------------------------
// tokens
// --------------------------------------------------------------------------

func devTokenCmd() *cobra.Command {
	var managerID uint
	var role string
	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Print a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if managerID == 0 {
				return fmt.Errorf("--manager is required")
			}
			if role != token.RoleManager && role != token.RoleAdmin {
				return fmt.Errorf("--role must be %s or %s", token.RoleManager, token.RoleAdmin)
			}
			if err := config.Initialize(); err != nil {
				return err
			}
			cfg := config.GetConfig()
			signed, err := token.GenerateJWT(managerID, role, cfg.JWT.AccessTokenSecret, cfg.AccessTokenExpiry())
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}
	cmd.Flags().UintVar(&managerID, "manager", 0, "Manager ID to embed")
	cmd.Flags().StringVar(&role, "role", token.RoleManager, "Role: manager or admin")
	return cmd
}
