// Package refdata holds the static reference tables used to enrich a
// predicted disease: descriptions, medications, diets, precautions and
// workouts. Tables are loaded once and never mutated.
package refdata

import "strings"

// MaxPrecautions is the number of precaution columns in the source table.
const MaxPrecautions = 4

type DescriptionRow struct {
	Disease     string
	Description string
}

type MedicationRow struct {
	Disease     string
	Medications []string
}

type DietRow struct {
	Disease string
	Diets   []string
}

// PrecautionRow keeps only the precaution slots that were filled, in column
// order, so a gap never shows up as an empty entry.
type PrecautionRow struct {
	Disease     string
	Precautions []string
}

type WorkoutRow struct {
	Disease string
	Workout string
}

// Tables is the raw row data as read from a source, in source order.
type Tables struct {
	Descriptions []DescriptionRow
	Medications  []MedicationRow
	Diets        []DietRow
	Precautions  []PrecautionRow
	Workouts     []WorkoutRow
}

// Entry is everything known about one disease. Missing facets hold empty
// values, never nil slices.
type Entry struct {
	Description string
	Medications []string
	Diets       []string
	Precautions []string
	Workouts    []string
}

// Store indexes Tables by lower-cased disease name. When a table repeats a
// disease, the first row is kept; which duplicate wins is not part of the
// contract. Workouts are the exception: every row for a disease contributes.
type Store struct {
	descriptions map[string]string
	medications  map[string][]string
	diets        map[string][]string
	precautions  map[string][]string
	workouts     map[string][]string
}

func key(disease string) string { return strings.ToLower(disease) }

func NewStore(t Tables) *Store {
	s := &Store{
		descriptions: make(map[string]string, len(t.Descriptions)),
		medications:  make(map[string][]string, len(t.Medications)),
		diets:        make(map[string][]string, len(t.Diets)),
		precautions:  make(map[string][]string, len(t.Precautions)),
		workouts:     make(map[string][]string),
	}
	for _, r := range t.Descriptions {
		k := key(r.Disease)
		if _, ok := s.descriptions[k]; !ok {
			s.descriptions[k] = r.Description
		}
	}
	for _, r := range t.Medications {
		k := key(r.Disease)
		if _, ok := s.medications[k]; !ok {
			s.medications[k] = clone(r.Medications)
		}
	}
	for _, r := range t.Diets {
		k := key(r.Disease)
		if _, ok := s.diets[k]; !ok {
			s.diets[k] = clone(r.Diets)
		}
	}
	for _, r := range t.Precautions {
		k := key(r.Disease)
		if _, ok := s.precautions[k]; ok {
			continue
		}
		p := compact(r.Precautions)
		if len(p) > MaxPrecautions {
			p = p[:MaxPrecautions]
		}
		s.precautions[k] = p
	}
	for _, r := range t.Workouts {
		k := key(r.Disease)
		s.workouts[k] = append(s.workouts[k], r.Workout)
	}
	return s
}

// Lookup resolves a disease against every table, case-insensitively.
func (s *Store) Lookup(disease string) Entry {
	k := key(disease)
	return Entry{
		Description: s.descriptions[k],
		Medications: clone(s.medications[k]),
		Diets:       clone(s.diets[k]),
		Precautions: clone(s.precautions[k]),
		Workouts:    clone(s.workouts[k]),
	}
}

// Stats reports the number of distinct diseases per table.
func (s *Store) Stats() map[string]int {
	return map[string]int{
		"descriptions": len(s.descriptions),
		"medications":  len(s.medications),
		"diets":        len(s.diets),
		"precautions":  len(s.precautions),
		"workouts":     len(s.workouts),
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
