package migrate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/furyracing/race-engine/log"
	"github.com/furyracing/race-engine/pkg/cmd/cmdutil"
	"github.com/furyracing/race-engine/pkg/config"
	"github.com/furyracing/race-engine/pkg/db/migrate"
)

var downSteps int

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().IntVar(&downSteps,
		"down",
		0,
		"number of migrations to revert instead of migrating up")

	return cmd
}

func startMigration() error {
	cmdutil.SetupLogger()
	cmdutil.WaitForRequiredServices(true, false)

	dbURL := prepareURLForDB(config.DB)
	if downSteps > 0 {
		log.Info("Reverting migrations", log.Int("steps", downSteps))
		return migrate.DowngradeDB(dbURL, downSteps)
	}
	return migrate.MigrateDB(dbURL)
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	} else {
		return fmt.Sprintf("%s?%s", url, options)
	}
}
