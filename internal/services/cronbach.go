package services

import (
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// CronbachAlpha computes Cronbach's alpha for a score table shaped
// respondents-by-items. Variances are sample variances (N-1), matching the
// convention of the common statistics packages, so results line up with
// reliability output from R or pandas. Alpha is not clamped; negative
// values are a legitimate signal of an inconsistent scale.
func CronbachAlpha(t *ScoreTable) (float64, error) {
	if t == nil {
		return 0, NewInvalidError("score table required")
	}
	k := t.NItems()
	if k < 2 {
		return 0, NewInsufficientItemsError("alpha requires at least 2 items, got " + strconv.Itoa(k))
	}
	if t.NRows() < 2 {
		return 0, NewShapeError("alpha requires at least 2 respondents, got " + strconv.Itoa(t.NRows()))
	}

	var sumItemVars float64
	for i := range t.Items {
		sumItemVars += stat.Variance(t.ColumnAt(i), nil)
	}
	varTotal := stat.Variance(t.Totals(), nil)
	if varTotal == 0 {
		return 0, NewDegenerateDataError("total score variance is zero")
	}

	kf := float64(k)
	return (kf / (kf - 1)) * (1 - sumItemVars/varTotal), nil
}

// AlphaIfDeleted recomputes alpha with the named item removed.
func AlphaIfDeleted(t *ScoreTable, item string) (float64, error) {
	rest, err := t.WithoutItem(item)
	if err != nil {
		return 0, err
	}
	return CronbachAlpha(rest)
}

// DeletedItemAlphas computes alpha-if-deleted for every item, keyed by item
// name. Items whose removal leaves alpha undefined (fewer than two
// remaining items, or a degenerate remainder) are omitted from the result.
func DeletedItemAlphas(t *ScoreTable) map[string]Float {
	out := make(map[string]Float, len(t.Items))
	for _, name := range t.Items {
		a, err := AlphaIfDeleted(t, name)
		if err != nil {
			continue
		}
		out[name] = Float(a)
	}
	return out
}
