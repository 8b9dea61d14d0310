// Package features turns a patient request into the numeric row the
// classifier was trained on.
package features

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidAge    = errors.New("age must be a finite number greater than or equal to 0")
	ErrInvalidGender = errors.New("gender must be 0 (female) or 1 (male)")
)

// Gender is the numeric encoding used at training time: labels sorted
// alphabetically, so Female=0 and Male=1.
type Gender int

const (
	GenderFemale Gender = 0
	GenderMale   Gender = 1
)

// ParseGender accepts only the exact codes 0 and 1.
func ParseGender(v float64) (Gender, error) {
	switch v {
	case float64(GenderFemale):
		return GenderFemale, nil
	case float64(GenderMale):
		return GenderMale, nil
	}
	return 0, fmt.Errorf("%w: got %v", ErrInvalidGender, v)
}

type Input struct {
	Age      float64
	Gender   float64
	Symptoms []string
}

type Encoder struct {
	columns  []string
	symptoms map[string]int
}

func NewEncoder(columns []string) (*Encoder, error) {
	if err := ValidateSchema(columns); err != nil {
		return nil, err
	}
	cols := make([]string, len(columns))
	copy(cols, columns)

	idx := make(map[string]int, len(cols)-2)
	for i := 2; i < len(cols); i++ {
		idx[cols[i]] = i
	}
	return &Encoder{columns: cols, symptoms: idx}, nil
}

// Width is the length of every vector produced by Encode.
func (e *Encoder) Width() int { return len(e.columns) }

// Columns returns a copy of the full schema.
func (e *Encoder) Columns() []string {
	out := make([]string, len(e.columns))
	copy(out, e.columns)
	return out
}

// Symptoms returns the symptom column names in schema order.
func (e *Encoder) Symptoms() []string {
	out := make([]string, len(e.columns)-2)
	copy(out, e.columns[2:])
	return out
}

// Encode builds the feature row. Symptom names that are not symptom columns
// are dropped silently; Age and Gender are never settable through Symptoms.
func (e *Encoder) Encode(in Input) ([]float64, error) {
	if math.IsNaN(in.Age) || math.IsInf(in.Age, 0) || in.Age < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAge, in.Age)
	}
	gender, err := ParseGender(in.Gender)
	if err != nil {
		return nil, err
	}

	vec := make([]float64, len(e.columns))
	vec[0] = in.Age
	vec[1] = float64(gender)
	for _, s := range in.Symptoms {
		if i, ok := e.symptoms[s]; ok {
			vec[i] = 1
		}
	}
	return vec, nil
}
