package scorer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"nba_props/refresh/internal/artifacts"
)

// BundleFormatVersion is the only bundle layout this loader understands.
const BundleFormatVersion = 1

// FeatureContract is the ordered feature vector the model was trained on.
var FeatureContract = []string{"season_pts", "rolling5", "home"}

// Bundle is the serialized model exported by the offline trainer: a
// Bayesian ridge regression reduced to its coefficients.
type Bundle struct {
	FormatVersion int       `json:"format_version" msgpack:"format_version"`
	Model         string    `json:"model" msgpack:"model"`
	Target        string    `json:"target" msgpack:"target"`
	Features      []string  `json:"features" msgpack:"features"`
	Coef          []float64 `json:"coef" msgpack:"coef"`
	Intercept     float64   `json:"intercept" msgpack:"intercept"`

	// Optional posterior terms for the predictive standard deviation.
	Alpha float64     `json:"alpha,omitempty" msgpack:"alpha,omitempty"`
	Sigma [][]float64 `json:"sigma,omitempty" msgpack:"sigma,omitempty"`
}

// LoadBundle reads and validates a model bundle. JSON is the default
// encoding; .msgpack and .mpk files are decoded as msgpack.
func LoadBundle(path string) (*LinearModel, *Bundle, error) {
	if err := artifacts.Require(path); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, artifacts.Corrupt(path, err)
	}

	var b Bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		err = msgpack.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, nil, artifacts.Corrupt(path, fmt.Errorf("failed to decode model bundle: %w", err))
	}

	if err := b.Validate(); err != nil {
		return nil, nil, artifacts.Schema(path, err)
	}

	return NewLinearModel(&b), &b, nil
}

// Validate checks the bundle against the feature contract.
func (b *Bundle) Validate() error {
	if b.FormatVersion != BundleFormatVersion {
		return fmt.Errorf("format_version %d not supported (want %d)", b.FormatVersion, BundleFormatVersion)
	}

	if len(b.Features) != len(FeatureContract) {
		return fmt.Errorf("features %v do not match contract %v", b.Features, FeatureContract)
	}
	for i, name := range FeatureContract {
		if b.Features[i] != name {
			return fmt.Errorf("features %v do not match contract %v", b.Features, FeatureContract)
		}
	}

	if len(b.Coef) != len(b.Features) {
		return fmt.Errorf("coef has %d entries for %d features", len(b.Coef), len(b.Features))
	}
	if !finite(b.Intercept) || !allFinite(b.Coef) {
		return fmt.Errorf("coefficients must be finite")
	}

	if b.Sigma != nil {
		if len(b.Sigma) != len(b.Features) {
			return fmt.Errorf("sigma must be %dx%d", len(b.Features), len(b.Features))
		}
		for _, row := range b.Sigma {
			if len(row) != len(b.Features) || !allFinite(row) {
				return fmt.Errorf("sigma must be a finite %dx%d matrix", len(b.Features), len(b.Features))
			}
		}
		if b.Alpha <= 0 || !finite(b.Alpha) {
			return fmt.Errorf("alpha must be positive when sigma is present")
		}
	}

	return nil
}

// LinearModel predicts intercept + coef·x.
type LinearModel struct {
	coef      []float64
	intercept float64
	alpha     float64
	sigma     *mat.Dense
}

// NewLinearModel builds a model from a validated bundle.
func NewLinearModel(b *Bundle) *LinearModel {
	m := &LinearModel{
		coef:      append([]float64(nil), b.Coef...),
		intercept: b.Intercept,
		alpha:     b.Alpha,
	}

	if b.Sigma != nil {
		n := len(b.Sigma)
		data := make([]float64, 0, n*n)
		for _, row := range b.Sigma {
			data = append(data, row...)
		}
		m.sigma = mat.NewDense(n, n, data)
	}

	return m
}

// Predict returns the predicted mean and, when the bundle carries the
// posterior covariance, the predictive standard deviation
// sqrt(1/alpha + xᵀΣx). std is 0 otherwise.
func (m *LinearModel) Predict(x []float64) (mean, std float64) {
	mean = m.intercept + floats.Dot(m.coef, x)

	if m.sigma != nil {
		v := mat.NewVecDense(len(x), append([]float64(nil), x...))
		variance := 1/m.alpha + mat.Inner(v, m.sigma, v)
		if variance > 0 && finite(variance) {
			std = math.Sqrt(variance)
		}
	}

	return mean, std
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
