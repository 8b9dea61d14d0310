package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DescriptionFile = "description.csv"
	MedicationFile  = "medications.csv"
	DietFile        = "diets.csv"
	PrecautionFile  = "precautions.csv"
	WorkoutFile     = "workout.csv"
)

// LoadCSV reads the five reference tables from dir.
func LoadCSV(dir string) (Tables, error) {
	var t Tables
	var err error
	if t.Descriptions, err = readDescriptions(filepath.Join(dir, DescriptionFile)); err != nil {
		return Tables{}, err
	}
	if t.Medications, err = readMedications(filepath.Join(dir, MedicationFile)); err != nil {
		return Tables{}, err
	}
	if t.Diets, err = readDiets(filepath.Join(dir, DietFile)); err != nil {
		return Tables{}, err
	}
	if t.Precautions, err = readPrecautions(filepath.Join(dir, PrecautionFile)); err != nil {
		return Tables{}, err
	}
	if t.Workouts, err = readWorkouts(filepath.Join(dir, WorkoutFile)); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// table is a CSV file with its header resolved to column positions.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string, required ...string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}
	for _, name := range required {
		if _, ok := t.columns[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// cell returns the named column of row, or "" when the row is short or the
// column does not exist.
func (t *table) cell(row []string, column string) string {
	i, ok := t.columns[strings.ToLower(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// line is the 1-based file line of data row i, counting the header.
func line(i int) int { return i + 2 }

func readDescriptions(path string) ([]DescriptionRow, error) {
	t, err := readTable(path, "Disease", "Description")
	if err != nil {
		return nil, err
	}
	out := make([]DescriptionRow, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, DescriptionRow{
			Disease:     t.cell(row, "Disease"),
			Description: t.cell(row, "Description"),
		})
	}
	return out, nil
}

func readMedications(path string) ([]MedicationRow, error) {
	t, err := readTable(path, "Disease", "Medication")
	if err != nil {
		return nil, err
	}
	out := make([]MedicationRow, 0, len(t.rows))
	for i, row := range t.rows {
		meds, err := ParseListLiteral(t.cell(row, "Medication"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line(i), err)
		}
		out = append(out, MedicationRow{Disease: t.cell(row, "Disease"), Medications: meds})
	}
	return out, nil
}

func readDiets(path string) ([]DietRow, error) {
	t, err := readTable(path, "Disease", "Diet")
	if err != nil {
		return nil, err
	}
	out := make([]DietRow, 0, len(t.rows))
	for i, row := range t.rows {
		diets, err := ParseListLiteral(t.cell(row, "Diet"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line(i), err)
		}
		out = append(out, DietRow{Disease: t.cell(row, "Disease"), Diets: diets})
	}
	return out, nil
}

func readPrecautions(path string) ([]PrecautionRow, error) {
	t, err := readTable(path, "Disease")
	if err != nil {
		return nil, err
	}
	out := make([]PrecautionRow, 0, len(t.rows))
	for _, row := range t.rows {
		p := make([]string, 0, MaxPrecautions)
		for n := 1; n <= MaxPrecautions; n++ {
			if v := t.cell(row, fmt.Sprintf("Precaution_%d", n)); v != "" {
				p = append(p, v)
			}
		}
		out = append(out, PrecautionRow{Disease: t.cell(row, "Disease"), Precautions: p})
	}
	return out, nil
}

func readWorkouts(path string) ([]WorkoutRow, error) {
	t, err := readTable(path, "disease", "workout")
	if err != nil {
		return nil, err
	}
	out := make([]WorkoutRow, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, WorkoutRow{
			Disease: t.cell(row, "disease"),
			Workout: t.cell(row, "workout"),
		})
	}
	return out, nil
}
