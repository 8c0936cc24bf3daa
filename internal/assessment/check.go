package assessment

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Skufu/pcos-risk/internal/apperr"
	"github.com/Skufu/pcos-risk/internal/config"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/model"
	"github.com/Skufu/pcos-risk/internal/scoring"
)

// SampleRecord is a fully populated record with a typical PCOS profile,
// used to smoke-test a classifier.
func SampleRecord() features.Record {
	return features.Record{
		features.AgeYrs: 25, features.WeightKg: 70, features.HeightCm: 165, features.BMI: 25.7,
		features.BloodGroup: 15, features.PulseRate: 72, features.RespirationRate: 18,
		features.Hemoglobin: 12.0, features.CycleRI: 1, features.CycleLength: 35,
		features.MarriageYears: 0, features.Pregnant: 0, features.Abortions: 0,
		features.BetaHCG1: 1.99, features.BetaHCG2: 1.99,
		features.FSH: 5.0, features.LH: 10.0, features.FSHLH: 0.5,
		features.Hip: 40, features.Waist: 35, features.WaistHipRatio: 0.875,
		features.TSH: 2.5, features.AMH: 8.0, features.Prolactin: 15.0,
		features.VitaminD3: 30.0, features.Progesterone: 0.5, features.RandomBloodSugar: 90,
		features.WeightGain: 1, features.HairGrowth: 1, features.SkinDarkening: 0,
		features.HairLoss: 1, features.Pimples: 1, features.FastFood: 1,
		features.RegularExercise: 0, features.BPSystolic: 120, features.BPDiastolic: 80,
		features.FollicleCountL: 15, features.FollicleCountR: 18, features.FollicleSizeL: 6.0,
		features.FollicleSizeR: 6.5, features.Endometrium: 5.0,
		features.LHFSHRatio: 2.0, features.TotalFollicles: 33,
	}
}

// Check verifies the artifacts behind art and writes a report to w. Schema
// drift is reported as a warning; any other failure stops the check and is
// returned.
func Check(w io.Writer, art config.Artifacts) error {
	r := reporter{w: w}

	r.section(1, "Checking model files")
	for _, f := range []struct{ label, path string }{
		{"Model file", art.ModelPath},
		{"Feature order file", art.SchemaPath},
	} {
		if _, err := os.Stat(f.path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = apperr.Errorf(apperr.KindArtifactNotFound, "%s not found at %s", f.label, f.path)
			}
			r.fail(err)
			return err
		}
		r.ok("%s found: %s", f.label, f.path)
	}

	r.section(2, "Loading model")
	clf, err := model.Load(art.ModelPath)
	if err != nil {
		r.fail(err)
		return err
	}
	r.ok("Model loaded, expects %d features", clf.NumFeatures())

	r.section(3, "Loading feature order")
	schema, err := model.LoadSchema(art.SchemaPath)
	if err != nil {
		r.fail(err)
		return err
	}
	r.ok("Feature order loaded, %d features", len(schema))
	r.info("First: %v", schema[:min(5, len(schema))])
	r.info("Last:  %v", schema[max(0, len(schema)-5):])

	r.section(4, "Verifying feature order")
	expected := features.Names()
	if len(schema) != len(expected) {
		r.warn("Feature count mismatch: expected %d, got %d", len(expected), len(schema))
	} else {
		r.ok("Feature count matches: %d", len(schema))
	}
	missing, extra := schema.Diff(expected)
	if len(missing) > 0 {
		r.warn("Missing features: %v", missing)
	}
	if len(extra) > 0 {
		r.warn("Extra features: %v", extra)
	}
	if len(missing) == 0 && len(extra) == 0 {
		r.ok("All expected features present")
	}

	r.section(5, "Testing prediction with sample data")
	if _, err := features.LoadDefaults(art.DefaultsPath); err != nil {
		r.fail(err)
		return err
	}
	scorer, err := scoring.NewScorer(clf, schema)
	if err != nil {
		r.fail(err)
		return err
	}
	res, err := scorer.Score(SampleRecord())
	if err != nil {
		r.fail(err)
		return err
	}
	label := "No PCOS"
	if res.Prediction == 1 {
		label = "PCOS"
	}
	r.ok("Prediction successful")
	r.info("Predicted class: %d (%s)", res.Prediction, label)
	r.info("PCOS probability: %.4f (%d%%), %s risk", res.Probability, res.Score, res.RiskLevel)

	fmt.Fprintln(w, "\nAll checks passed. Model is ready to use.")
	return nil
}

type reporter struct {
	w io.Writer
}

func (r reporter) section(n int, title string) {
	fmt.Fprintf(r.w, "\n%d. %s...\n", n, title)
}

func (r reporter) ok(format string, args ...any) {
	fmt.Fprintf(r.w, "   OK    "+format+"\n", args...)
}

func (r reporter) warn(format string, args ...any) {
	fmt.Fprintf(r.w, "   WARN  "+format+"\n", args...)
}

func (r reporter) info(format string, args ...any) {
	fmt.Fprintf(r.w, "         "+format+"\n", args...)
}

func (r reporter) fail(err error) {
	fmt.Fprintf(r.w, "   FAIL  %v\n", err)
}
