package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type TargetPolicy string

const (
	PolicyHigherBetter TargetPolicy = "higher_better"
	PolicyLowerBetter  TargetPolicy = "lower_better"
	PolicyTargetRange  TargetPolicy = "target_range"
)

const (
	MinRating     = 1.0
	MaxRating     = 5.0
	NeutralRating = 3.0
)

var Policies = []TargetPolicy{PolicyHigherBetter, PolicyLowerBetter, PolicyTargetRange}

func (p TargetPolicy) Valid() bool {
	switch p {
	case PolicyHigherBetter, PolicyLowerBetter, PolicyTargetRange:
		return true
	}
	return false
}

// ScoreFromTarget maps an achieved value against its target onto the 1-5
// scale using the band table of the policy. A zero target yields 0 and an
// unknown policy the neutral 3.0.
func ScoreFromTarget(target, achieved float64, policy TargetPolicy) float64 {
	if target == 0 {
		return 0
	}

	switch policy {
	case PolicyHigherBetter:
		pct := achieved / target * 100
		switch {
		case pct >= 100:
			return 5.0
		case pct >= 90:
			return 4.0
		case pct >= 80:
			return 3.0
		case pct >= 70:
			return 2.0
		default:
			return 1.0
		}
	case PolicyLowerBetter:
		if achieved > target {
			return 1.0
		}
		improvement := (target - achieved) / target * 100
		switch {
		case improvement >= 20:
			return 5.0
		case improvement >= 10:
			return 4.0
		case improvement >= 5:
			return 3.0
		default:
			// at or under target is never scored as a miss
			return 2.0
		}
	case PolicyTargetRange:
		// signed divisor: a negative target gives a negative variance, which lands in the top band
		variance := math.Abs(achieved-target) / target * 100
		switch {
		case variance <= 2:
			return 5.0
		case variance <= 5:
			return 4.0
		case variance <= 10:
			return 3.0
		case variance <= 15:
			return 2.0
		default:
			return 1.0
		}
	default:
		return NeutralRating
	}
}

// ScoreFromBehaviors averages the ratings that are numeric and within 1-5,
// rounded to one decimal. Anything else is skipped; with nothing left the
// neutral 3.0 is returned.
func ScoreFromBehaviors(ratings []any) float64 {
	var sum float64
	var count int
	for _, raw := range ratings {
		value, ok := Numeric(raw)
		if !ok || value < MinRating || value > MaxRating {
			continue
		}
		sum += value
		count++
	}
	if count == 0 {
		return NeutralRating
	}
	return Round(sum/float64(count), 1)
}

// Numeric reports whether raw holds a finite number, accepting Go numeric
// types, json.Number and numeric strings.
func Numeric(raw any) (float64, bool) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// Round rounds half away from zero to the given number of decimals.
func Round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
