package inference

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scaler applies a fitted standardisation: (x - mean) / scale.
type Scaler struct {
	mean  *mat.VecDense
	scale *mat.VecDense
}

// NewScaler copies mean and scale. A zero scale is replaced by 1 so constant
// columns pass through centred.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("scaler has no columns")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler mean has %d columns, scale has %d", len(mean), len(scale))
	}
	m := make([]float64, len(mean))
	copy(m, mean)
	s := make([]float64, len(scale))
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s[i] = v
	}
	return &Scaler{
		mean:  mat.NewVecDense(len(m), m),
		scale: mat.NewVecDense(len(s), s),
	}, nil
}

func (s *Scaler) Dim() int { return s.mean.Len() }

func (s *Scaler) Transform(x []float64) (*mat.VecDense, error) {
	n := s.Dim()
	if len(x) != n {
		return nil, &ShapeError{Stage: "scaler", Want: n, Got: len(x)}
	}
	in := make([]float64, n)
	copy(in, x)

	out := mat.NewVecDense(n, nil)
	out.SubVec(mat.NewVecDense(n, in), s.mean)
	out.DivElemVec(out, s.scale)
	return out, nil
}
