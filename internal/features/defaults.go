package features

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// Defaults is the policy table used when a measurement was not collected.
// Clinical values assume a population-normal patient.
type Defaults struct {
	// Questionnaire fallbacks.
	AgeYears          float64 `yaml:"ageYears"`
	HeightCm          float64 `yaml:"heightCm"`
	WeightKg          float64 `yaml:"weightKg"`
	CycleLengthDays   float64 `yaml:"cycleLengthDays"`
	ExerciseFrequency string  `yaml:"exerciseFrequency"`
	DietType          string  `yaml:"dietType"`

	// Clinical and lab values never asked for.
	BloodGroup       float64 `yaml:"bloodGroup"`
	PulseBPM         float64 `yaml:"pulseBpm"`
	RespirationRate  float64 `yaml:"respirationRate"`
	HemoglobinGdl    float64 `yaml:"hemoglobinGdl"`
	MarriageYears    float64 `yaml:"marriageYears"`
	Pregnant         float64 `yaml:"pregnant"`
	Abortions        float64 `yaml:"abortions"`
	BetaHCG1         float64 `yaml:"betaHcg1"`
	BetaHCG2         float64 `yaml:"betaHcg2"`
	FSH              float64 `yaml:"fsh"`
	LH               float64 `yaml:"lh"`
	FSHLH            float64 `yaml:"fshLh"`
	TSH              float64 `yaml:"tsh"`
	AMH              float64 `yaml:"amh"`
	Prolactin        float64 `yaml:"prolactin"`
	VitaminD3        float64 `yaml:"vitaminD3"`
	Progesterone     float64 `yaml:"progesterone"`
	RandomBloodSugar float64 `yaml:"randomBloodSugar"`
	SkinDarkening    float64 `yaml:"skinDarkening"`
	BPSystolic       float64 `yaml:"bpSystolic"`
	BPDiastolic      float64 `yaml:"bpDiastolic"`
	FollicleCountL   float64 `yaml:"follicleCountL"`
	FollicleCountR   float64 `yaml:"follicleCountR"`
	FollicleSizeLmm  float64 `yaml:"follicleSizeLmm"`
	FollicleSizeRmm  float64 `yaml:"follicleSizeRmm"`
	EndometriumMm    float64 `yaml:"endometriumMm"`

	// Used when the ratio denominator is not positive.
	WaistHipFallback float64 `yaml:"waistHipFallback"`
	LHFSHFallback    float64 `yaml:"lhFshFallback"`
}

// DefaultTable returns the built-in defaults.
func DefaultTable() Defaults {
	return Defaults{
		AgeYears:          25,
		HeightCm:          165,
		WeightKg:          60,
		CycleLengthDays:   28,
		ExerciseFrequency: "None",
		DietType:          "Normal",

		BloodGroup:       15,
		PulseBPM:         72,
		RespirationRate:  18,
		HemoglobinGdl:    12.0,
		MarriageYears:    0,
		Pregnant:         0,
		Abortions:        0,
		BetaHCG1:         1.99,
		BetaHCG2:         1.99,
		FSH:              5.0,
		LH:               5.0,
		FSHLH:            1.0,
		TSH:              2.5,
		AMH:              3.0,
		Prolactin:        15.0,
		VitaminD3:        30.0,
		Progesterone:     0.5,
		RandomBloodSugar: 90,
		SkinDarkening:    0,
		BPSystolic:       120,
		BPDiastolic:      80,
		FollicleCountL:   8,
		FollicleCountR:   8,
		FollicleSizeLmm:  5.0,
		FollicleSizeRmm:  5.0,
		EndometriumMm:    5.0,

		WaistHipFallback: 0.85,
		LHFSHFallback:    1.0,
	}
}

// LoadDefaults overlays the YAML file at path on top of DefaultTable.
// An empty path returns the built-in table.
func LoadDefaults(path string) (Defaults, error) {
	d := DefaultTable()
	if path == "" {
		return d, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, apperr.Errorf(apperr.KindArtifactNotFound, "Defaults file not found at %s", path)
		}
		return d, apperr.New(apperr.KindArtifactLoad, "read defaults", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return DefaultTable(), apperr.New(apperr.KindArtifactLoad, "parse defaults", fmt.Errorf("%s: %w", path, err))
	}
	return d, nil
}

// WriteYAML renders the table, e.g. as a starting point for an override file.
func (d Defaults) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	return enc.Close()
}
