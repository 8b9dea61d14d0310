// Package predict runs one prediction request end to end: encode the
// patient's answers, classify them, and enrich the resulting disease label
// from the reference tables.
package predict

import (
	"errors"
	"strings"

	"github.com/Skufu/diseasepredict/internal/features"
	"github.com/Skufu/diseasepredict/internal/refdata"
)

// Request is the /predict payload. Pointers distinguish a missing field from
// a zero value.
type Request struct {
	Age      *float64 `json:"age" binding:"required"`
	Gender   *float64 `json:"gender" binding:"required"`
	Symptoms []string `json:"symptoms" binding:"required"`
}

type Result struct {
	Disease     string   `json:"disease"`
	Description string   `json:"description"`
	Medicines   string   `json:"medicines"`
	Diet        string   `json:"diet"`
	Precautions []string `json:"precautions"`
	Workout     []string `json:"workout"`
}

// Predictor turns a feature row into a disease label.
type Predictor interface {
	Predict(vec []float64) (string, error)
}

// Service bundles the read-only state built at startup. It is safe for
// concurrent use.
type Service struct {
	encoder   *features.Encoder
	predictor Predictor
	store     *refdata.Store
}

func NewService(encoder *features.Encoder, predictor Predictor, store *refdata.Store) (*Service, error) {
	switch {
	case encoder == nil:
		return nil, errors.New("predict: encoder is required")
	case predictor == nil:
		return nil, errors.New("predict: predictor is required")
	case store == nil:
		return nil, errors.New("predict: reference store is required")
	}
	return &Service{encoder: encoder, predictor: predictor, store: store}, nil
}

// Symptoms lists the symptom names the encoder recognises.
func (s *Service) Symptoms() []string { return s.encoder.Symptoms() }

// Predict either returns a complete Result or a *RequestError /
// *InferenceError; never both.
func (s *Service) Predict(req Request) (Result, error) {
	switch {
	case req.Age == nil:
		return Result{}, &RequestError{Msg: "age is required"}
	case req.Gender == nil:
		return Result{}, &RequestError{Msg: "gender is required"}
	case req.Symptoms == nil:
		return Result{}, &RequestError{Msg: "symptoms is required"}
	}

	vec, err := s.encoder.Encode(features.Input{
		Age:      *req.Age,
		Gender:   *req.Gender,
		Symptoms: req.Symptoms,
	})
	if err != nil {
		return Result{}, &RequestError{Msg: err.Error(), Err: err}
	}

	disease, err := s.predictor.Predict(vec)
	if err != nil {
		return Result{}, &InferenceError{Err: err}
	}

	return Enrich(s.store, disease), nil
}

// Enrich attaches the reference data for disease. A disease missing from a
// table contributes that table's empty value.
func Enrich(store *refdata.Store, disease string) Result {
	e := store.Lookup(disease)
	return Result{
		Disease:     disease,
		Description: e.Description,
		Medicines:   strings.Join(e.Medications, ", "),
		Diet:        strings.Join(e.Diets, ", "),
		Precautions: e.Precautions,
		Workout:     e.Workouts,
	}
}
