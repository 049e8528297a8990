package cli

import (
	"fmt"

	"github.com/avforge/estq/internal/config"
	"github.com/avforge/estq/internal/db"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize or migrate the estq database",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbFlag := cmd.Flag("db"); dbFlag != nil && dbFlag.Value.String() != "" {
		cfg.DBPath = dbFlag.Value.String()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Printf("Database ready at %s\n", cfg.DBPath)
	return nil
}
