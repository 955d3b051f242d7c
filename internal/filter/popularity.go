package filter

// eraMinimum is the minimum page views for entities dated after a year.
type eraMinimum struct {
	after int64
	views int
}

// Cascades are checked top to bottom; the first era the year falls into
// decides, and floor applies to everything older.
var (
	humanCascade = []eraMinimum{
		{after: 1920, views: 100_000},
		{after: 1900, views: 25_000},
		{after: 1800, views: 15_000},
	}
	generalCascade = []eraMinimum{
		{after: 1960, views: 40_000},
		{after: 1900, views: 25_000},
		{after: 1800, views: 15_000},
	}
)

const popularityFloor = 10_000

// EnoughPageViews applies the era-dependent popularity thresholds. Humans
// must clear the human cascade as well as the general one.
func EnoughPageViews(year int64, types []string, views int) bool {
	if contains(types, TypeHuman) && views < minimumViews(humanCascade, year) {
		return false
	}
	return views >= minimumViews(generalCascade, year)
}

// RequiredPageViews returns the effective minimum for an entity, the larger of
// the applicable cascades.
func RequiredPageViews(year int64, types []string) int {
	required := minimumViews(generalCascade, year)
	if contains(types, TypeHuman) {
		if h := minimumViews(humanCascade, year); h > required {
			required = h
		}
	}
	return required
}

// minimumViews returns the minimum for year in cascade.
func minimumViews(cascade []eraMinimum, year int64) int {
	for _, era := range cascade {
		if year > era.after {
			return era.views
		}
	}
	return popularityFloor
}
