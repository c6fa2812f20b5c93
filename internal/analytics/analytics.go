// Package analytics turns click buckets into the reports shown for a link.
//
// Each report is a pure function over a sequence of entity.BucketCount rows.
// Rows usually come from a storage level GROUP BY, but Events adapts a stream
// of raw click events into the same shape, so both paths share one fold.
package analytics

import (
	"cmp"
	"iter"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/vadimbarashkov/ziplink/internal/entity"
)

const (
	// DirectReferrer labels clicks that arrived without a referrer.
	DirectReferrer = "Direct"
	// TopCountries is the maximum number of rows in the country report.
	TopCountries = 6
)

// Tally accumulates counts per bucket key.
type Tally map[string]int64

// Add increases the count of key by n.
func (t Tally) Add(key string, n int64) {
	t[key] += n
}

// Fold adds every row of seq to the tally under the key derived by keyFn.
// Rows for which keyFn reports false are skipped.
func (t Tally) Fold(seq iter.Seq[entity.BucketCount], keyFn func(string) (string, bool)) Tally {
	for row := range seq {
		key, ok := keyFn(row.Key)
		if !ok {
			continue
		}
		t.Add(key, row.Count)
	}
	return t
}

// Buckets returns the tally as unordered rows.
func (t Tally) Buckets() []entity.BucketCount {
	rows := make([]entity.BucketCount, 0, len(t))
	for k, n := range t {
		rows = append(rows, entity.BucketCount{Key: k, Count: n})
	}
	return rows
}

// Total returns the sum of all counts.
func (t Tally) Total() int64 {
	var total int64
	for _, n := range t {
		total += n
	}
	return total
}

// DayKey returns the UTC calendar date of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// MonthKey returns the UTC month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// ReferrerKey maps a referrer to its lowercased host name. Empty referrers map to
// DirectReferrer and referrers without a parseable host are kept verbatim.
func ReferrerKey(referrer string) (string, bool) {
	if referrer == "" {
		return DirectReferrer, true
	}

	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return referrer, true
	}

	return strings.ToLower(u.Hostname()), true
}

// CountryKey drops unknown and empty countries.
func CountryKey(country string) (string, bool) {
	if country == "" || country == entity.UnknownCountry {
		return "", false
	}
	return country, true
}

func identity(key string) (string, bool) {
	return key, true
}

// Daily folds day buckets into the daily report, ascending by date.
func Daily(seq iter.Seq[entity.BucketCount]) []entity.DailyClicks {
	rows := ascending(make(Tally).Fold(seq, identity))

	out := make([]entity.DailyClicks, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.DailyClicks{Date: row.Key, Count: row.Count})
	}
	return out
}

// Monthly folds month buckets into the monthly report, ascending by month.
func Monthly(seq iter.Seq[entity.BucketCount]) []entity.MonthlyClicks {
	rows := ascending(make(Tally).Fold(seq, identity))

	out := make([]entity.MonthlyClicks, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.MonthlyClicks{Month: row.Key, Count: row.Count})
	}
	return out
}

// Referrers folds raw referrer buckets into the referrer report, merging
// referrers of the same host and ordering by count descending.
func Referrers(seq iter.Seq[entity.BucketCount]) []entity.ReferrerClicks {
	rows := descending(make(Tally).Fold(seq, ReferrerKey))

	out := make([]entity.ReferrerClicks, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ReferrerClicks{Referrer: row.Key, Count: row.Count})
	}
	return out
}

// Countries folds country buckets into the country report: unknown countries
// are excluded, rows are ordered by count descending and cut to TopCountries.
func Countries(seq iter.Seq[entity.BucketCount]) []entity.CountryClicks {
	rows := descending(make(Tally).Fold(seq, CountryKey))
	if len(rows) > TopCountries {
		rows = rows[:TopCountries]
	}

	out := make([]entity.CountryClicks, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.CountryClicks{Country: row.Key, Count: row.Count})
	}
	return out
}

// Events yields one single-click bucket per event, keyed by dim.
func Events(events iter.Seq[entity.ClickEvent], dim entity.Dimension) iter.Seq[entity.BucketCount] {
	return func(yield func(entity.BucketCount) bool) {
		for ev := range events {
			if !yield(entity.BucketCount{Key: eventKey(ev, dim), Count: 1}) {
				return
			}
		}
	}
}

func eventKey(ev entity.ClickEvent, dim entity.Dimension) string {
	switch dim {
	case entity.DimensionDay:
		return DayKey(ev.CreatedAt)
	case entity.DimensionMonth:
		return MonthKey(ev.CreatedAt)
	case entity.DimensionReferrer:
		if ev.Referrer == nil {
			return ""
		}
		return *ev.Referrer
	case entity.DimensionCountry:
		return ev.Country
	default:
		return ""
	}
}

func ascending(t Tally) []entity.BucketCount {
	rows := t.Buckets()
	slices.SortFunc(rows, func(a, b entity.BucketCount) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return rows
}

// descending orders by count, ties by key so reports are stable.
func descending(t Tally) []entity.BucketCount {
	rows := t.Buckets()
	slices.SortFunc(rows, func(a, b entity.BucketCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return rows
}
