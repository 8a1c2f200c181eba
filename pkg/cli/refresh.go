package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/cli/config"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/service/leetcode"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/safe"
)

func cmdRefresh() *cli.Command {
	var (
		storeCfg    config.Store
		leetcodeCfg config.LeetCode
		rosterCfg   config.Roster
	)

	var flags []cli.Flag
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, leetcodeCfg.Flags()...)
	flags = append(flags, rosterCfg.Flags()...)

	return &cli.Command{
		Name:      "refresh",
		Usage:     "Refresh cached statistics for the whole roster, or one user",
		ArgsUsage: "[username]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			localRoster, err := rosterCfg.Load()
			if err != nil {
				return err
			}

			store, err := storeCfg.Configure(ctx, localRoster)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, store)

			uc := usecase.New(store, leetcodeCfg.Configure(),
				usecase.WithExtraRoster(localRoster),
				usecase.WithProgress(printProgress),
			)

			if c.Args().Len() > 0 {
				return refreshSingle(ctx, uc, c.Args().First())
			}
			return refreshRoster(ctx, uc)
		},
	}
}

func refreshSingle(ctx context.Context, uc *usecase.UseCases, raw string) error {
	username, err := types.NewUsername(raw)
	if err != nil {
		return err
	}

	stats, err := uc.RefreshByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, leetcode.ErrRateLimited) {
			color.Yellow("rate limited by the statistics provider, try again later")
		}
		return err
	}

	color.Green("refreshed %s", stats.Username)
	printStats(stats)
	return nil
}

func refreshRoster(ctx context.Context, uc *usecase.UseCases) error {
	roster, err := uc.Roster(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("refreshing %d tracked users\n", len(roster))

	start := time.Now()
	report, err := uc.RefreshAll(ctx, roster)
	if report != nil {
		printReport(report, time.Since(start))
	}
	return err
}

func printProgress(p model.RefreshProgress) {
	fmt.Printf("  [%d/%d] %s\n", p.Completed, p.Total, p.Username)
}

func printReport(report *model.RefreshReport, elapsed time.Duration) {
	fmt.Printf("\ncycle %s finished in %s\n", report.CycleID, elapsed.Round(time.Millisecond))
	color.Green("  succeeded:    %d", report.Succeeded)
	if report.Failed > 0 {
		color.Red("  failed:       %d", report.Failed)
	} else {
		fmt.Printf("  failed:       %d\n", report.Failed)
	}
	fmt.Printf("  attempted:    %d of %d\n", report.Attempted, report.Total)

	if report.Halted {
		color.Yellow("  halted: provider rate limit hit, remaining users keep their cached data")
	}
}

func printStats(stats *model.CachedStats) {
	name := stats.DisplayName
	if name == "" {
		name = stats.Username.String()
	}
	fmt.Printf("  name:         %s\n", name)
	fmt.Printf("  solved:       %d\n", stats.SolvedCount)
	fmt.Printf("  badges:       %d\n", stats.BadgeCount)
	if stats.AvatarURL != "" {
		fmt.Printf("  avatar:       %s\n", stats.AvatarURL)
	}
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("  last updated: %s\n", stats.LastUpdated.Format(time.RFC3339))
	}
}
