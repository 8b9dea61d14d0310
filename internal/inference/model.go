// Package inference wraps the fitted scaler, classifier and label encoder
// behind a single vector-in, label-out call.
package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ScalerFile  = "scaler.json"
	ModelFile   = "model.json"
	LabelsFile  = "label_encoder.json"
	ColumnsFile = "columns.json"
)

// Model is immutable after construction and safe for concurrent use.
type Model struct {
	scaler     *Scaler
	classifier Classifier
	labels     *LabelDecoder
}

func NewModel(scaler *Scaler, classifier Classifier, labels *LabelDecoder) (*Model, error) {
	if scaler == nil || classifier == nil || labels == nil {
		return nil, fmt.Errorf("model needs a scaler, a classifier and a label encoder")
	}
	if scaler.Dim() != classifier.Dim() {
		return nil, fmt.Errorf("scaler has %d features, classifier %d", scaler.Dim(), classifier.Dim())
	}
	if classifier.Classes() > labels.Len() {
		return nil, fmt.Errorf("classifier has %d classes, label encoder %d", classifier.Classes(), labels.Len())
	}
	return &Model{scaler: scaler, classifier: classifier, labels: labels}, nil
}

// Dim is the feature width the artifacts were fitted on.
func (m *Model) Dim() int { return m.scaler.Dim() }

// Labels returns the number of known disease labels.
func (m *Model) Labels() int { return m.labels.Len() }

func (m *Model) Predict(vec []float64) (string, error) {
	scaled, err := m.scaler.Transform(vec)
	if err != nil {
		return "", err
	}
	class, err := m.classifier.Classify(scaled)
	if err != nil {
		return "", err
	}
	return m.labels.Decode(class)
}

type scalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type modelArtifact struct {
	Kind      string      `json:"kind"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

type labelsArtifact struct {
	Classes []string `json:"classes"`
}

// Load reads scaler.json, model.json and label_encoder.json from dir.
func Load(dir string) (*Model, error) {
	var sa scalerArtifact
	if err := readJSON(filepath.Join(dir, ScalerFile), &sa); err != nil {
		return nil, err
	}
	scaler, err := NewScaler(sa.Mean, sa.Scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ScalerFile, err)
	}

	var ma modelArtifact
	if err := readJSON(filepath.Join(dir, ModelFile), &ma); err != nil {
		return nil, err
	}
	classifier, err := newClassifier(ma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ModelFile, err)
	}

	var la labelsArtifact
	if err := readJSON(filepath.Join(dir, LabelsFile), &la); err != nil {
		return nil, err
	}
	labels, err := NewLabelDecoder(la.Classes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LabelsFile, err)
	}

	return NewModel(scaler, classifier, labels)
}

func newClassifier(a modelArtifact) (Classifier, error) {
	switch a.Kind {
	case "linear", "":
		return NewLinearClassifier(a.Coef, a.Intercept)
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
