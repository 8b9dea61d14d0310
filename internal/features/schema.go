package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	AgeColumn    = "Age"
	GenderColumn = "Gender"
)

// defaultColumns mirrors the column order the classifier was fitted on.
var defaultColumns = []string{
	AgeColumn, GenderColumn,
	"nausea", "joint_pain", "abdominal_pain", "high_fever", "chills",
	"fatigue", "runny_nose", "dizziness", "headache", "chest_pain",
	"vomiting", "cough", "shivering", "asthma_history", "high_cholesterol", "diabetes",
	"obesity", "hiv_aids", "nasal_polyps", "asthma", "high_blood_pressure", "severe_headache",
	"weakness", "trouble_seeing", "fever", "body_aches", "sore_throat", "sneezing",
	"diarrhea", "rapid_breathing", "rapid_heart_rate", "pain_behind_eyes", "swollen_glands",
	"rashes", "sinus_headache", "facial_pain", "shortness_of_breath", "reduced_smell_and_taste",
	"skin_irritation", "itchiness", "throbbing_headache", "confusion", "back_pain", "knee_ache",
}

// DefaultSchema returns a copy of the 46-column schema.
func DefaultSchema() []string {
	out := make([]string, len(defaultColumns))
	copy(out, defaultColumns)
	return out
}

// ValidateSchema checks that columns start with Age and Gender and that every
// name is present and unique.
func ValidateSchema(columns []string) error {
	if len(columns) < 2 {
		return fmt.Errorf("schema needs at least %s and %s columns, got %d", AgeColumn, GenderColumn, len(columns))
	}
	if columns[0] != AgeColumn || columns[1] != GenderColumn {
		return fmt.Errorf("schema must start with %s, %s; got %s, %s", AgeColumn, GenderColumn, columns[0], columns[1])
	}
	seen := make(map[string]struct{}, len(columns))
	for i, name := range columns {
		if name == "" {
			return fmt.Errorf("schema column %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("schema column %q appears more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// LoadSchema reads a JSON array of column names. A missing file is reported
// with an error wrapping os.ErrNotExist so callers can fall back to
// DefaultSchema.
func LoadSchema(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var columns []string
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := ValidateSchema(columns); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return columns, nil
}

// SchemaOrDefault loads the schema at path, or the default one when the file
// does not exist.
func SchemaOrDefault(path string) ([]string, error) {
	columns, err := LoadSchema(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSchema(), nil
	}
	return columns, err
}
