package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/cli/config"
)

func configureLogger(t *testing.T, args ...string) error {
	t.Helper()

	var cfg config.Logger
	var configErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			closer, err := cfg.Configure()
			if err != nil {
				configErr = err
				return nil
			}
			closer()
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...))).Required()
	return configErr
}

func TestLoggerConfigure(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		gt.NoError(t, configureLogger(t))
	})

	t.Run("json format is valid", func(t *testing.T) {
		gt.NoError(t, configureLogger(t, "--log-format", "json", "--log-level", "debug"))
	})

	t.Run("invalid level is rejected", func(t *testing.T) {
		gt.Error(t, configureLogger(t, "--log-level", "loud"))
	})

	t.Run("invalid format is rejected", func(t *testing.T) {
		gt.Error(t, configureLogger(t, "--log-format", "xml"))
	})
}
