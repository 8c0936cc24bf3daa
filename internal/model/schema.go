package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Skufu/pcos-risk/internal/apperr"
)

// Schema is the ordered list of column names the classifier was trained on.
type Schema []string

// LoadSchema reads the feature order artifact, a JSON array of names.
func LoadSchema(path string) (Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Errorf(apperr.KindArtifactNotFound, "Feature order file not found at %s", path)
		}
		return nil, apperr.New(apperr.KindArtifactLoad, "Error loading feature order", err)
	}

	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, apperr.New(apperr.KindArtifactLoad, "Error loading feature order", err)
	}
	if err := s.Validate(); err != nil {
		return nil, apperr.New(apperr.KindArtifactLoad, "Error loading feature order", err)
	}
	return s, nil
}

// Validate requires at least one column and unique, non-blank names.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("feature order is empty")
	}
	seen := make(map[string]struct{}, len(s))
	for i, name := range s {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("feature %d has a blank name", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Diff compares s to the expected names. It returns names expected but
// absent from s, and names in s that were not expected, each in order.
func (s Schema) Diff(expected []string) (missing, extra []string) {
	have := make(map[string]struct{}, len(s))
	for _, name := range s {
		have[name] = struct{}{}
	}
	want := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		want[name] = struct{}{}
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	for _, name := range s {
		if _, ok := want[name]; !ok {
			extra = append(extra, name)
		}
	}
	return missing, extra
}
