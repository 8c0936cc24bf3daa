package features

import (
	"math"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// Column names of the classifier's training data.
const (
	AgeYrs           = "Age_yrs"
	WeightKg         = "Weight_Kg"
	HeightCm         = "HeightCm"
	BMI              = "BMI"
	BloodGroup       = "Blood_Group"
	PulseRate        = "Pulse_ratebpm"
	RespirationRate  = "RR_breathsmin"
	Hemoglobin       = "Hbgdl"
	CycleRI          = "CycleRI"
	CycleLength      = "Cycle_lengthdays"
	MarriageYears    = "Marraige_Status_Yrs"
	Pregnant         = "PregnantYN"
	Abortions        = "No_of_abortions"
	BetaHCG1         = "I_betaHCGmIUmL"
	BetaHCG2         = "II_betaHCGmIUmL"
	FSH              = "FSHmIUmL"
	LH               = "LHmIUmL"
	FSHLH            = "FSHLH"
	Hip              = "Hipinch"
	Waist            = "Waistinch"
	WaistHipRatio    = "WaistHip_Ratio"
	TSH              = "TSH_mIUL"
	AMH              = "AMHngmL"
	Prolactin        = "PRLngmL"
	VitaminD3        = "Vit_D3_ngmL"
	Progesterone     = "PRGngmL"
	RandomBloodSugar = "RBSmgdl"
	WeightGain       = "Weight_gainYN"
	HairGrowth       = "hair_growthYN"
	SkinDarkening    = "Skin_darkening_YN"
	HairLoss         = "Hair_lossYN"
	Pimples          = "PimplesYN"
	FastFood         = "Fast_food_YN"
	RegularExercise  = "RegExerciseYN"
	BPSystolic       = "BP_Systolic_mmHg"
	BPDiastolic      = "BP_Diastolic_mmHg"
	FollicleCountL   = "Follicle_No_L"
	FollicleCountR   = "Follicle_No_R"
	FollicleSizeL    = "Avg_F_size_L_mm"
	FollicleSizeR    = "Avg_F_size_R_mm"
	Endometrium      = "Endometrium_mm"
	LHFSHRatio       = "LH_FSH_Ratio"
	TotalFollicles   = "Total_Follicle_Count"
)

var names = []string{
	AgeYrs, WeightKg, HeightCm, BMI, BloodGroup, PulseRate, RespirationRate,
	Hemoglobin, CycleRI, CycleLength, MarriageYears, Pregnant, Abortions,
	BetaHCG1, BetaHCG2, FSH, LH, FSHLH, Hip, Waist,
	WaistHipRatio, TSH, AMH, Prolactin, VitaminD3, Progesterone, RandomBloodSugar,
	WeightGain, HairGrowth, SkinDarkening, HairLoss, Pimples,
	FastFood, RegularExercise, BPSystolic, BPDiastolic,
	FollicleCountL, FollicleCountR, FollicleSizeL, FollicleSizeR, Endometrium,
	LHFSHRatio, TotalFollicles,
}

// Names returns the expected schema in training column order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Record is a completed feature row keyed by column name.
type Record map[string]float64

// Validate checks that every expected column is present and finite.
func (r Record) Validate() error {
	for _, name := range names {
		v, ok := r[name]
		if !ok {
			return apperr.Errorf(apperr.KindInference, "feature %s missing from completed record", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperr.Errorf(apperr.KindInputType, "feature %s is not finite (%v)", name, v)
		}
	}
	if len(r) != len(names) {
		return apperr.Errorf(apperr.KindInference, "completed record has %d features, want %d", len(r), len(names))
	}
	return nil
}
