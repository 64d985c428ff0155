package enums

import "fmt"

// RankingPeriod scopes the reseller leaderboard window.
type RankingPeriod string

const (
	RankingPeriodMonth RankingPeriod = "month"
	RankingPeriodYear  RankingPeriod = "year"
	RankingPeriodAll   RankingPeriod = "all"
)

var validRankingPeriods = []RankingPeriod{
	RankingPeriodMonth,
	RankingPeriodYear,
	RankingPeriodAll,
}

// String implements fmt.Stringer.
func (r RankingPeriod) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RankingPeriod.
func (r RankingPeriod) IsValid() bool {
	for _, candidate := range validRankingPeriods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRankingPeriod converts raw input into a RankingPeriod.
func ParseRankingPeriod(value string) (RankingPeriod, error) {
	for _, candidate := range validRankingPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ranking period %q", value)
}
