package ulasan

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// TruncatedSVD projects rows onto the top right singular vectors of the
// training matrix. Data is not centered.
type TruncatedSVD struct {
	NComponents int
	Components  [][]float64 // NComponents rows of length NFeatures.
	NFeatures   int
}

// NewTruncatedSVD returns an unfitted reducer.
func NewTruncatedSVD(nComponents int) *TruncatedSVD {
	return &TruncatedSVD{NComponents: nComponents}
}

func denseFromSparse(X []SparseVector, nFeatures int) *mat.Dense {
	d := mat.NewDense(len(X), nFeatures, nil)
	for i, row := range X {
		for k, idx := range row.Indices {
			d.Set(i, idx, row.Values[k])
		}
	}
	return d
}

// Fit computes the leading components of X. The eigen-decomposition runs on
// whichever Gram matrix (XᵀX or XXᵀ) is smaller.
func (s *TruncatedSVD) Fit(X []SparseVector, nFeatures int) error {
	if len(X) == 0 || nFeatures == 0 {
		return errors.New("svd: empty matrix")
	}
	nc := s.NComponents
	if nc > nFeatures {
		nc = nFeatures
	}
	if nc < 1 {
		nc = 1
	}

	x := denseFromSparse(X, nFeatures)
	nSamples := len(X)

	var gram mat.SymDense
	if nFeatures <= nSamples {
		gram.SymOuterK(1, x.T())
	} else {
		gram.SymOuterK(1, x)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(&gram, true); !ok {
		return errors.New("svd: eigen-decomposition did not converge")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	size := len(values)
	components := make([][]float64, nc)
	for c := 0; c < nc; c++ {
		col := size - 1 - c
		comp := make([]float64, nFeatures)
		if c < size {
			if nFeatures <= nSamples {
				for j := 0; j < nFeatures; j++ {
					comp[j] = vectors.At(j, col)
				}
			} else if sigma := math.Sqrt(math.Max(values[col], 0)); sigma > 1e-12 {
				// v = Xᵀu / σ
				for i := 0; i < nSamples; i++ {
					u := vectors.At(i, col)
					if u == 0 {
						continue
					}
					for _, idx := range X[i].Indices {
						comp[idx] += x.At(i, idx) * u
					}
				}
				for j := range comp {
					comp[j] /= sigma
				}
			}
		}
		components[c] = flipSign(comp)
	}

	s.NComponents = nc
	s.NFeatures = nFeatures
	s.Components = components
	return nil
}

// flipSign makes the largest-magnitude coefficient positive so components
// are deterministic.
func flipSign(v []float64) []float64 {
	best, bestAbs := 0, -1.0
	for i, x := range v {
		if a := math.Abs(x); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	if len(v) > 0 && v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
	return v
}

// Transform returns the reduced dense rows of X.
func (s *TruncatedSVD) Transform(X []SparseVector) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		reduced := make([]float64, len(s.Components))
		for c, comp := range s.Components {
			reduced[c] = row.Dot(comp)
		}
		out[i] = reduced
	}
	return out
}
