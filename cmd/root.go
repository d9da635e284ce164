package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "csv-converter-ai",
	Short: "Normalize heterogeneous eyewear catalogs into a canonical schema",
	Long:  "Classifies tabular product files, maps columns onto a canonical schema, cleans fields by rule, and resolves the rest through cost-bounded batched AI enhancement.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
