package services

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// AlphaInterval is a Fisher-transform confidence interval for alpha.
type AlphaInterval struct {
	Lower      Float   `json:"lower"`
	Upper      Float   `json:"upper"`
	StdError   Float   `json:"std_error"`
	Confidence float64 `json:"confidence"`
}

// ConfidenceInterval approximates a confidence interval for alpha via the
// Fisher z transform: alpha is mapped with atanh, a symmetric interval is
// built on the transformed scale using the normal quantile, and the bounds
// are mapped back with tanh. nItems is the number of scale items and
// nSubjects the number of respondents; the approximation needs more than
// two of the latter and an alpha strictly inside (-1, 1).
func ConfidenceInterval(alpha float64, nItems, nSubjects int, confidence float64) (*AlphaInterval, error) {
	if nItems < 2 {
		return nil, NewInvalidParameterError("interval requires at least 2 items, got " + strconv.Itoa(nItems))
	}
	if nSubjects <= 2 {
		return nil, NewInvalidParameterError("interval requires more than 2 subjects, got " + strconv.Itoa(nSubjects))
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, NewInvalidParameterError("confidence must be in (0, 1), got " + strconv.FormatFloat(confidence, 'g', -1, 64))
	}
	if math.IsNaN(alpha) || math.Abs(alpha) >= 1 {
		return nil, NewInvalidParameterError("fisher transform undefined for alpha " + strconv.FormatFloat(alpha, 'g', -1, 64))
	}
	z := math.Atanh(alpha)
	se := math.Sqrt(2 * (1 - alpha*alpha) / float64((nItems-1)*(nSubjects-2)))
	crit := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	return &AlphaInterval{
		Lower:      Float(math.Tanh(z - crit*se)),
		Upper:      Float(math.Tanh(z + crit*se)),
		StdError:   Float(se),
		Confidence: confidence,
	}, nil
}
