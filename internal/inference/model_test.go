package inference

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestScalerTransform(t *testing.T) {
	s, err := NewScaler([]float64{10, 0, 1}, []float64{2, 0, 4})
	if err != nil {
		t.Fatalf("new scaler: %v", err)
	}
	out, err := s.Transform([]float64{14, 3, 9})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := []float64{2, 3, 2}
	for i, w := range want {
		if got := out.AtVec(i); got != w {
			t.Fatalf("index %d: want %v, got %v", i, w, got)
		}
	}
}

func TestScalerDoesNotMutateInput(t *testing.T) {
	s, _ := NewScaler([]float64{1, 1}, []float64{1, 1})
	in := []float64{5, 6}
	if _, err := s.Transform(in); err != nil {
		t.Fatal(err)
	}
	if in[0] != 5 || in[1] != 6 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestScalerShapeMismatch(t *testing.T) {
	s, _ := NewScaler([]float64{0, 0}, []float64{1, 1})
	_, err := s.Transform([]float64{1, 2, 3})
	var shape *ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shape.Want != 2 || shape.Got != 3 || shape.Stage != "scaler" {
		t.Fatalf("unexpected shape error %+v", shape)
	}
}

func TestNewScalerValidation(t *testing.T) {
	if _, err := NewScaler(nil, nil); err == nil {
		t.Fatal("expected error for empty scaler")
	}
	if _, err := NewScaler([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for mismatched scaler")
	}
}

func TestLinearClassifierMulticlass(t *testing.T) {
	c, err := NewLinearClassifier([][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}, []float64{0, 0, 0.5})
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	cases := []struct {
		x    []float64
		want int
	}{
		{[]float64{0.1, 0.9, 0.2}, 1},
		{[]float64{2, 0, 0}, 0},
		{[]float64{0, 0, 0}, 2},
	}
	for _, tc := range cases {
		got, err := c.Classify(mat.NewVecDense(3, tc.x))
		if err != nil {
			t.Fatalf("classify %v: %v", tc.x, err)
		}
		if got != tc.want {
			t.Fatalf("classify %v: want %d, got %d", tc.x, tc.want, got)
		}
	}
	if c.Classes() != 3 || c.Dim() != 3 {
		t.Fatalf("unexpected dims: classes %d dim %d", c.Classes(), c.Dim())
	}
}

func TestLinearClassifierBinary(t *testing.T) {
	c, err := NewLinearClassifier([][]float64{{1, -1}}, []float64{0})
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	if c.Classes() != 2 {
		t.Fatalf("expected 2 classes, got %d", c.Classes())
	}
	if got, _ := c.Classify(mat.NewVecDense(2, []float64{2, 1})); got != 1 {
		t.Fatalf("expected class 1, got %d", got)
	}
	if got, _ := c.Classify(mat.NewVecDense(2, []float64{1, 2})); got != 0 {
		t.Fatalf("expected class 0, got %d", got)
	}
}

func TestLinearClassifierValidation(t *testing.T) {
	if _, err := NewLinearClassifier(nil, nil); err == nil {
		t.Fatal("expected error for empty model")
	}
	if _, err := NewLinearClassifier([][]float64{{1, 2}, {1}}, []float64{0, 0}); err == nil {
		t.Fatal("expected error for ragged coefficients")
	}
	if _, err := NewLinearClassifier([][]float64{{1, 2}}, []float64{0, 0}); err == nil {
		t.Fatal("expected error for intercept mismatch")
	}
}

func TestLabelDecoder(t *testing.T) {
	d, err := NewLabelDecoder([]string{"Allergy", "Flu"})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := d.Decode(1); got != "Flu" {
		t.Fatalf("expected Flu, got %q", got)
	}
	if _, err := d.Decode(2); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
	if _, err := d.Decode(-1); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func writeArtifact(t *testing.T, dir, name string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTestArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeArtifact(t, dir, ScalerFile, map[string]any{
		"mean":  []float64{40, 0.5, 0},
		"scale": []float64{10, 0.5, 1},
	})
	writeArtifact(t, dir, ModelFile, map[string]any{
		"kind":      "linear",
		"coef":      [][]float64{{0, 0, -1}, {0, 0, 1}},
		"intercept": []float64{0, 0},
	})
	writeArtifact(t, dir, LabelsFile, map[string]any{
		"classes": []string{"Common Cold", "Flu"},
	})
	return dir
}

func TestLoadAndPredict(t *testing.T) {
	m, err := Load(writeTestArtifacts(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Dim() != 3 || m.Labels() != 2 {
		t.Fatalf("unexpected model dims %d/%d", m.Dim(), m.Labels())
	}

	got, err := m.Predict([]float64{30, 1, 1})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != "Flu" {
		t.Fatalf("expected Flu, got %q", got)
	}
	got, err = m.Predict([]float64{30, 1, 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got != "Common Cold" {
		t.Fatalf("expected Common Cold, got %q", got)
	}
}

func TestPredictShapeMismatch(t *testing.T) {
	m, err := Load(writeTestArtifacts(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = m.Predict(make([]float64, 46))
	var shape *ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		dir := writeTestArtifacts(t)
		writeArtifact(t, dir, ModelFile, map[string]any{"kind": "forest"})
		_, err := Load(dir)
		if err == nil || !strings.Contains(err.Error(), "forest") {
			t.Fatalf("expected unsupported kind error, got %v", err)
		}
	})

	t.Run("width mismatch", func(t *testing.T) {
		dir := writeTestArtifacts(t)
		writeArtifact(t, dir, ModelFile, map[string]any{
			"coef":      [][]float64{{1, 1}, {1, 1}},
			"intercept": []float64{0, 0},
		})
		if _, err := Load(dir); err == nil {
			t.Fatal("expected width mismatch error")
		}
	})

	t.Run("too few labels", func(t *testing.T) {
		dir := writeTestArtifacts(t)
		writeArtifact(t, dir, LabelsFile, map[string]any{"classes": []string{"Flu"}})
		if _, err := Load(dir); err == nil {
			t.Fatal("expected label count error")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		dir := writeTestArtifacts(t)
		if err := os.WriteFile(filepath.Join(dir, ScalerFile), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatal("expected decode error")
		}
	})
}
