package features

import (
	"math"
	"slices"
	"strings"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// Symptom labels as sent by the questionnaire.
const (
	SymptomWeightGain = "Weight Gain"
	SymptomHairGrowth = "Hair Growth"
	SymptomHairLoss   = "Hair Loss"
	SymptomAcne       = "Acne"

	cycleRegular = "Regular"
)

// Completer fills the columns the questionnaire does not collect.
type Completer struct {
	defaults Defaults
}

func NewCompleter(d Defaults) *Completer {
	return &Completer{defaults: d}
}

// Defaults returns the table the completer was built with.
func (c *Completer) Defaults() Defaults {
	return c.defaults
}

// Complete maps the answers onto a full Record. Clinical columns take the
// default table; BMI, hip/waist and the ratio columns are derived.
func (c *Completer) Complete(in PartialInput) (Record, error) {
	d := c.defaults

	heightCm, err := numberOr(in.Height, "height", d.HeightCm)
	if err != nil {
		return nil, err
	}
	weightKg, err := numberOr(in.Weight, "weight", d.WeightKg)
	if err != nil {
		return nil, err
	}
	age, err := numberOr(in.Age, "age", d.AgeYears)
	if err != nil {
		return nil, err
	}
	cycleLength, err := numberOr(in.CycleDuration, "cycleDuration", d.CycleLengthDays)
	if err != nil {
		return nil, err
	}
	if heightCm == 0 {
		return nil, apperr.Errorf(apperr.KindInputType, "field height: must be non-zero")
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)

	r := Record{
		AgeYrs:           age,
		WeightKg:         weightKg,
		HeightCm:         heightCm,
		BMI:              bmi,
		BloodGroup:       d.BloodGroup,
		PulseRate:        d.PulseBPM,
		RespirationRate:  d.RespirationRate,
		Hemoglobin:       d.HemoglobinGdl,
		CycleRI:          cycleCode(in.Cycle),
		CycleLength:      cycleLength,
		MarriageYears:    d.MarriageYears,
		Pregnant:         d.Pregnant,
		Abortions:        d.Abortions,
		BetaHCG1:         d.BetaHCG1,
		BetaHCG2:         d.BetaHCG2,
		FSH:              d.FSH,
		LH:               d.LH,
		FSHLH:            d.FSHLH,
		Hip:              EstimateHip(bmi),
		Waist:            EstimateWaist(bmi),
		TSH:              d.TSH,
		AMH:              d.AMH,
		Prolactin:        d.Prolactin,
		VitaminD3:        d.VitaminD3,
		Progesterone:     d.Progesterone,
		RandomBloodSugar: d.RandomBloodSugar,
		WeightGain:       flag(slices.Contains(in.Symptoms, SymptomWeightGain)),
		HairGrowth:       flag(slices.Contains(in.Symptoms, SymptomHairGrowth)),
		SkinDarkening:    d.SkinDarkening,
		HairLoss:         flag(slices.Contains(in.Symptoms, SymptomHairLoss)),
		Pimples:          flag(slices.Contains(in.Symptoms, SymptomAcne)),
		FastFood:         flag(containsAny(textOr(in.DietType, d.DietType), "fast", "junk")),
		RegularExercise:  flag(containsAny(textOr(in.ExerciseFrequency, d.ExerciseFrequency), "daily", "weekly")),
		BPSystolic:       d.BPSystolic,
		BPDiastolic:      d.BPDiastolic,
		FollicleCountL:   d.FollicleCountL,
		FollicleCountR:   d.FollicleCountR,
		FollicleSizeL:    d.FollicleSizeLmm,
		FollicleSizeR:    d.FollicleSizeRmm,
		Endometrium:      d.EndometriumMm,
	}

	r[WaistHipRatio] = Ratio(r[Waist], r[Hip], d.WaistHipFallback)
	r[LHFSHRatio] = Ratio(r[LH], r[FSH], d.LHFSHFallback)
	r[TotalFollicles] = r[FollicleCountL] + r[FollicleCountR]

	return r, nil
}

// EstimateHip approximates hip circumference (inches) from BMI.
func EstimateHip(bmi float64) float64 {
	return math.RoundToEven(bmi*1.5 + 30)
}

// EstimateWaist approximates waist circumference (inches) from BMI.
func EstimateWaist(bmi float64) float64 {
	return math.RoundToEven(bmi*1.2 + 25)
}

// Ratio divides num by den, returning fallback unless den is positive.
func Ratio(num, den, fallback float64) float64 {
	if den > 0 {
		return num / den
	}
	return fallback
}

func numberOr(n *Number, field string, fallback float64) (float64, error) {
	if n == nil {
		return fallback, nil
	}
	v, err := n.Float64()
	if err != nil {
		return 0, apperr.Errorf(apperr.KindInputType, "field %s: %w", field, err)
	}
	return v, nil
}

func textOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func cycleCode(cycle *string) float64 {
	if cycle != nil && *cycle == cycleRegular {
		return 2
	}
	return 1
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
