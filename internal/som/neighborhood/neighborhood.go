// Package neighborhood implements the scalar-to-scalar neighborhood
// weighting functors used by the Updater: Gaussian and Mexican-hat.
package neighborhood

import (
	"fmt"
	"math"

	"somtrain/internal/somerr"
)

// Func maps a grid distance to an update-magnitude weight in (roughly)
// [0,1].
type Func func(x float64) float64

// Gaussian returns 1/(sigma*sqrt(2*pi)) * exp(-x^2/(2*sigma^2)). sigma
// must be > 0.
func Gaussian(sigma float64) (Func, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: gaussian sigma=%g must be > 0", somerr.ErrInvalidParameter, sigma)
	}
	norm := 1.0 / (sigma * math.Sqrt(2*math.Pi))
	denom := 2 * sigma * sigma
	return func(x float64) float64 {
		return norm * math.Exp(-(x*x)/denom)
	}, nil
}

// MexicanHat returns 2/(sqrt(3*sigma)*pi^(1/4)) * (1 - x^2/sigma^2) *
// exp(-x^2/(2*sigma^2)). sigma must be > 0. This retains the source's
// normalisation convention verbatim rather than the standard Ricker
// wavelet's sigma^2 rescaling.
func MexicanHat(sigma float64) (Func, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: mexican-hat sigma=%g must be > 0", somerr.ErrInvalidParameter, sigma)
	}
	norm := 2.0 / (math.Sqrt(3*sigma) * math.Pow(math.Pi, 0.25))
	sigma2 := sigma * sigma
	return func(x float64) float64 {
		x2 := x * x
		return norm * (1 - x2/sigma2) * math.Exp(-x2/(2*sigma2))
	}, nil
}
