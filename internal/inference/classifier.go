package inference

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Classifier maps a scaled feature vector to a class index.
type Classifier interface {
	Classify(x mat.Vector) (int, error)
	Dim() int
	Classes() int
}

// LinearClassifier is a fitted one-vs-rest or multinomial linear model.
// With a single coefficient row it behaves as a binary classifier.
type LinearClassifier struct {
	coef      *mat.Dense
	intercept *mat.VecDense
}

func NewLinearClassifier(coef [][]float64, intercept []float64) (*LinearClassifier, error) {
	k := len(coef)
	if k == 0 {
		return nil, fmt.Errorf("linear model has no coefficient rows")
	}
	if len(intercept) != k {
		return nil, fmt.Errorf("linear model has %d coefficient rows but %d intercepts", k, len(intercept))
	}
	n := len(coef[0])
	if n == 0 {
		return nil, fmt.Errorf("linear model has no feature columns")
	}
	flat := make([]float64, 0, k*n)
	for i, row := range coef {
		if len(row) != n {
			return nil, fmt.Errorf("coefficient row %d has %d columns, want %d", i, len(row), n)
		}
		flat = append(flat, row...)
	}
	b := make([]float64, k)
	copy(b, intercept)

	return &LinearClassifier{
		coef:      mat.NewDense(k, n, flat),
		intercept: mat.NewVecDense(k, b),
	}, nil
}

func (c *LinearClassifier) Dim() int {
	_, n := c.coef.Dims()
	return n
}

func (c *LinearClassifier) Classes() int {
	k, _ := c.coef.Dims()
	if k == 1 {
		return 2
	}
	return k
}

func (c *LinearClassifier) Classify(x mat.Vector) (int, error) {
	k, n := c.coef.Dims()
	if x.Len() != n {
		return 0, &ShapeError{Stage: "classifier", Want: n, Got: x.Len()}
	}
	scores := mat.NewVecDense(k, nil)
	scores.MulVec(c.coef, x)
	scores.AddVec(scores, c.intercept)

	if k == 1 {
		if scores.AtVec(0) > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return floats.MaxIdx(scores.RawVector().Data), nil
}
