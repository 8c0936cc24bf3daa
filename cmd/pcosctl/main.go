// Command pcosctl scores a PCOS questionnaire from the command line and
// inspects the model artifacts behind it.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/pcos-risk/internal/config"
	"github.com/Skufu/pcos-risk/internal/logging"
)

// errReported means the command already wrote its failure to stdout.
var errReported = errors.New("failure reported")

type options struct {
	art      config.Artifacts
	logLevel string
	logger   *zap.Logger
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{
		art:      config.ArtifactsFromEnv(),
		logLevel: config.GetEnv("LOG_LEVEL", "info"),
	}

	root := &cobra.Command{
		Use:   "pcosctl",
		Short: "PCOS risk scoring from questionnaire answers",
		Long: `pcosctl completes a partial PCOS questionnaire into the full clinical
feature record, scores it with the exported classifier and prints the result
as JSON on stdout. Logs go to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.art.ModelPath, "model", opts.art.ModelPath, "classifier artifact (env MODEL_PATH)")
	flags.StringVar(&opts.art.SchemaPath, "schema", opts.art.SchemaPath, "feature order artifact (env FEATURE_ORDER_PATH)")
	flags.StringVar(&opts.art.DefaultsPath, "defaults", opts.art.DefaultsPath, "YAML override for clinical defaults (env CLINICAL_DEFAULTS_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error (env LOG_LEVEL)")

	root.AddCommand(
		newPredictCmd(opts),
		newCheckCmd(opts),
		newDefaultsCmd(opts),
	)
	return root
}
