package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/pcos-risk/internal/apperr"
	"github.com/Skufu/pcos-risk/internal/assessment"
	"github.com/Skufu/pcos-risk/internal/features"
)

const predictUsage = `pcosctl predict '{"age": 25, "weight": 70, ...}'`

func newPredictCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "predict [assessment-json | -]",
		Short: "Score one questionnaire and print the result as JSON",
		Long: `Reads the questionnaire answers as a JSON object, either from the first
argument or from stdin when the argument is "-". Missing answers fall back to
the clinical defaults. On failure an {"error","type"} object is printed and
the exit status is 1.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts, args)
		},
	}
}

func runPredict(cmd *cobra.Command, opts *options, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		_ = writeJSON(out, map[string]string{
			"error": "Missing assessment data argument",
			"usage": predictUsage,
		})
		return errReported
	}

	data := []byte(args[0])
	if args[0] == "-" {
		var err error
		if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return report(out, apperr.New(apperr.KindInputParse, "read stdin", err))
		}
	}

	in, err := features.ParseInput(data)
	if err != nil {
		return report(out, err)
	}

	engine, err := assessment.Load(opts.art, opts.logger)
	if err != nil {
		return report(out, err)
	}

	res, err := engine.Assess(in)
	if err != nil {
		return report(out, err)
	}
	return writeJSON(out, res)
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the model artifacts and run a sample prediction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := assessment.Check(cmd.OutOrStdout(), opts.art); err != nil {
				opts.logger.Debug("artifact check failed", zap.Error(err))
				return errReported
			}
			return nil
		},
	}
}

func newDefaultsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the clinical defaults table as YAML",
		Long: `Prints the defaults used for every answer and lab value the questionnaire
does not collect, including any --defaults override. The output is a valid
override file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := features.LoadDefaults(opts.art.DefaultsPath)
			if err != nil {
				return err
			}
			return d.WriteYAML(cmd.OutOrStdout())
		},
	}
}

// report prints err in the {"error","type"} shape and marks it handled.
func report(w io.Writer, err error) error {
	_ = writeJSON(w, map[string]string{
		"error": err.Error(),
		"type":  apperr.KindOf(err).String(),
	})
	return errReported
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
