package entity

import "time"

// UnknownCountry is stored for every click until a geo-IP lookup exists.
const UnknownCountry = "Unknown"

// Visitor holds the request data a click is derived from.
type Visitor struct {
	UserAgent string
	Referrer  string
	IP        string
}

// ClickEvent is one immutable record of a resolved redirect.
type ClickEvent struct {
	ID         int64
	LinkID     string
	Referrer   *string
	IP         *string
	Browser    string
	OS         string
	DeviceType string
	Country    string
	CreatedAt  time.Time
}

// Dimension selects the bucketing key of a click rollup.
type Dimension string

const (
	DimensionDay      Dimension = "day"
	DimensionMonth    Dimension = "month"
	DimensionReferrer Dimension = "referrer"
	DimensionCountry  Dimension = "country"
)

// BucketCount is the number of clicks that share one bucket key.
type BucketCount struct {
	Key   string
	Count int64
}

type DailyClicks struct {
	Date  string // YYYY-MM-DD
	Count int64
}

type MonthlyClicks struct {
	Month string // YYYY-MM
	Count int64
}

type ReferrerClicks struct {
	Referrer string
	Count    int64
}

type CountryClicks struct {
	Country string
	Count   int64
}
