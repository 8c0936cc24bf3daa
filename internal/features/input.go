package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// PartialInput holds the questionnaire answers. Every field is optional;
// an absent field falls back to the Defaults table.
type PartialInput struct {
	Age               *Number  `json:"age,omitempty"`
	Height            *Number  `json:"height,omitempty"`
	Weight            *Number  `json:"weight,omitempty"`
	Cycle             *string  `json:"cycle,omitempty"`
	CycleDuration     *Number  `json:"cycleDuration,omitempty"`
	Symptoms          []string `json:"symptoms,omitempty"`
	ExerciseFrequency *string  `json:"exerciseFrequency,omitempty"`
	DietType          *string  `json:"dietType,omitempty"`
}

// Number keeps the raw JSON token of a numeric answer. The web form posts
// numbers as strings, so both 70 and "70" are accepted; coercion happens
// later in Float64 so the failing field can be named.
type Number string

// Num returns a Number holding v.
func Num(v float64) *Number {
	n := Number(strconv.FormatFloat(v, 'g', -1, 64))
	return &n
}

// NumText returns a Number holding s as a JSON string.
func NumText(s string) *Number {
	b, _ := json.Marshal(s)
	n := Number(b)
	return &n
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(bytes.TrimSpace(b))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return []byte(n), nil
}

// Float64 coerces the token to a finite float.
func (n Number) Float64() (float64, error) {
	raw := strings.TrimSpace(string(n))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return 0, fmt.Errorf("invalid string literal %s", raw)
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert %q to float", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not a finite number", raw)
	}
	return v, nil
}

func (n *Number) blank() bool {
	if n == nil {
		return true
	}
	raw := strings.TrimSpace(string(*n))
	return raw == "" || raw == `""`
}

// ParseInput decodes a JSON assessment payload.
func ParseInput(data []byte) (PartialInput, error) {
	var in PartialInput

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return in, apperr.Errorf(apperr.KindInputParse, "Invalid JSON format: empty input")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return in, apperr.Errorf(apperr.KindInputParse, "assessment data must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&in); err != nil {
		return PartialInput{}, classifyDecodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return PartialInput{}, apperr.Errorf(apperr.KindInputParse, "Invalid JSON format: extra data after object")
	}
	return in, nil
}

func classifyDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return apperr.Errorf(apperr.KindInputParse, "assessment data must be a JSON object")
		}
		return apperr.Errorf(apperr.KindInputType, "field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return apperr.Errorf(apperr.KindInputParse, "Invalid JSON format: %v", err)
}

// MissingRequired lists the body measurements the web form must always send.
func (in PartialInput) MissingRequired() []string {
	var missing []string
	if in.Age.blank() {
		missing = append(missing, "age")
	}
	if in.Weight.blank() {
		missing = append(missing, "weight")
	}
	if in.Height.blank() {
		missing = append(missing, "height")
	}
	return missing
}
