package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
)

// Roster holds the CLI flag for the optional local roster file: manually
// tracked usernames on top of the spreadsheet roster.
type Roster struct {
	path string
}

func (x *Roster) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "roster-file",
			Usage:       "Path to a local TOML roster file with extra users",
			Sources:     cli.EnvVars("LEETBOARD_ROSTER_FILE"),
			Destination: &x.path,
		},
	}
}

type rosterFile struct {
	Users []rosterEntry `toml:"user"`
}

type rosterEntry struct {
	Username    string `toml:"username"`
	DisplayName string `toml:"display_name"`
}

// Load reads and validates the local roster file. No configured path
// yields an empty roster.
func (x *Roster) Load() ([]model.UserRecord, error) {
	if x.path == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read roster file", goerr.V("path", x.path))
	}

	var parsed rosterFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse roster file", goerr.V("path", x.path))
	}

	roster := make([]model.UserRecord, 0, len(parsed.Users))
	for _, entry := range parsed.Users {
		username, err := types.NewUsername(entry.Username)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid roster file entry", goerr.V("path", x.path))
		}
		roster = append(roster, model.UserRecord{
			Username:    username,
			DisplayName: entry.DisplayName,
		})
	}

	if err := model.ValidateRoster(roster); err != nil {
		return nil, goerr.Wrap(err, "invalid roster file", goerr.V("path", x.path))
	}
	return roster, nil
}
