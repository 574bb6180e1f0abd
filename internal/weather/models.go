package weather

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in loc. A nil loc keeps t's own location.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t, nil), nil
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Time returns local midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HourlyRecord is one hourly observation or forecast step.
// Nil fields are values the upstream reported as null.
type HourlyRecord struct {
	Time          time.Time `json:"time"`
	Temperature   *float64  `json:"temperature"`
	DewPoint      *float64  `json:"dewPoint"`
	Precipitation *float64  `json:"precipitation"`
	Rain          *float64  `json:"rain"`
	Snowfall      *float64  `json:"snowfall"`
}

// HourlySeries is a run of hourly records declared in one timezone.
// Days are cut at local midnight of Timezone; a nil Timezone uses each
// record's own location.
type HourlySeries struct {
	Timezone *time.Location
	Records  []HourlyRecord
}

// DailyWindRecord is a daily wind summary as supplied upstream. The
// min <= max <= gusts ordering is not guaranteed.
type DailyWindRecord struct {
	Date     Date     `json:"date"`
	SpeedMin *float64 `json:"windSpeedMin"`
	SpeedMax *float64 `json:"windSpeedMax"`
	GustsMax *float64 `json:"windGustsMax"`
}

// DailyTemperatureDew summarizes temperature and dew point for one local day.
type DailyTemperatureDew struct {
	Date    Date    `json:"date"`
	TMin    float64 `json:"tmin"`
	TMax    float64 `json:"tmax"`
	DewMean float64 `json:"dewMean"`
	Samples int     `json:"samples"`
}

// DailyPrecipitation holds 24-hour sums for one local day, in mm.
type DailyPrecipitation struct {
	Date          Date    `json:"date"`
	Precipitation float64 `json:"precipitationTotal"`
	Rain          float64 `json:"rainTotal"`
	Snowfall      float64 `json:"snowfallTotal"`
	Samples       int     `json:"samples"`
}

// Place is a resolved location.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Label renders the place the way it is shown above the daily charts.
func (p Place) Label() string {
	return fmt.Sprintf("%s, %s (lat=%.3f, lon=%.3f)", p.Name, p.Country, p.Latitude, p.Longitude)
}

// LocationQuery is a free-text place name with an optional ISO country code.
type LocationQuery struct {
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country,omitempty" yaml:"country"`
}

// Key returns a canonical string key for indexing this query in stores.
func (q LocationQuery) Key() string {
	return strings.ToLower(strings.TrimSpace(q.Name)) + ":" + strings.ToUpper(strings.TrimSpace(q.Country))
}

func (q LocationQuery) String() string {
	if q.Country == "" {
		return q.Name
	}
	return q.Name + ", " + q.Country
}

// FetchWindow is how many days around today the fetcher asks for.
type FetchWindow struct {
	PastDays     int
	ForecastDays int
}

// Observations are the raw series returned by a Fetcher, already localized
// to Timezone.
type Observations struct {
	Timezone  *time.Location
	Hourly    HourlySeries
	DailyWind []DailyWindRecord
}

// Overview is everything the presentation layer needs for one place.
type Overview struct {
	ID            string                `json:"id"`
	Query         LocationQuery         `json:"query"`
	Place         Place                 `json:"place"`
	Label         string                `json:"label"`
	Today         Date                  `json:"today"`
	GeneratedAt   time.Time             `json:"generatedAt"`
	Temperature   []DailyTemperatureDew `json:"temperature"`
	Precipitation []DailyPrecipitation  `json:"precipitation"`
	Wind          WindSeries            `json:"wind"`
}
