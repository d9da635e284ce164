package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samrub06/csv-converter-ai/internal/pipeline"
	"github.com/samrub06/csv-converter-ai/pkg/anthropic"
)

var (
	convertForceType string
	convertOutDir    string
	convertReport    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file...>",
	Short: "Convert product files into the canonical schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertForceType != "" {
			cfg.Pipeline.ForceType = convertForceType
		}
		if convertOutDir != "" {
			cfg.Output.Dir = convertOutDir
		}

		client := newEnhancementClient()

		// Files convert independently; each file's pipeline stays
		// strictly sequential inside.
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(2)

		for _, path := range args {
			g.Go(func() error {
				p := pipeline.New(cfg, client)
				stats, err := p.Run(ctx, path)
				if err != nil {
					zap.L().Error("convert: file failed",
						zap.String("file", path),
						zap.Error(err),
					)
					return err
				}
				if convertReport {
					fmt.Println(pipeline.FormatReport(stats))
				}
				return nil
			})
		}

		return g.Wait()
	},
}

// newEnhancementClient returns nil when no credential is configured;
// the engine then resolves every flagged field locally with zero calls.
func newEnhancementClient() anthropic.Client {
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("convert: no enhancement credential, running in simulation mode")
		return nil
	}
	return anthropic.NewClient(cfg.Anthropic.Key)
}

func init() {
	convertCmd.Flags().StringVar(&convertForceType, "type", "", "force the record type (FRAME, LENS, EYE_GLASSES, CONTACT_LENS)")
	convertCmd.Flags().StringVar(&convertOutDir, "out-dir", "", "output directory (default from config)")
	convertCmd.Flags().BoolVar(&convertReport, "report", true, "print a conversion report per file")
	rootCmd.AddCommand(convertCmd)
}
