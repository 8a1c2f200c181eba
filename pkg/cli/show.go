package cli

import (
	"context"
	"errors"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/cli/config"
	"github.com/willow-lab/leetboard/pkg/domain/interfaces"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/safe"
)

func cmdShow() *cli.Command {
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
		Name:      "show",
		Usage:     "Show the cached statistics snapshot for a user (no fetch)",
		ArgsUsage: "<username>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return cli.Exit("usage: leetboard show <username>", 2)
			}
			username, err := types.NewUsername(c.Args().First())
			if err != nil {
				return err
			}

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
				usecase.WithExtraRoster(localRoster))

			stats, err := uc.GetCachedSnapshot(ctx, username)
			if err != nil {
				if errors.Is(err, interfaces.ErrRecordNotFound) {
					color.Yellow("%s has no cached data yet (never fetched)", username)
					return nil
				}
				return err
			}

			color.Cyan("%s", stats.Username)
			printStats(stats)
			return nil
		},
	}
}
