package weather

import (
	"fmt"
	"sort"
)

// Summarize runs both aggregations and the wind classifier over one fetch
// result. It is pure: identity and timestamps are left for the caller.
func Summarize(place Place, obs Observations) (Overview, error) {
	hourly := obs.Hourly
	if hourly.Timezone == nil {
		hourly.Timezone = obs.Timezone
	}

	temps, err := AggregateTemperatureDew(hourly)
	if err != nil {
		return Overview{}, fmt.Errorf("aggregate temperature: %w", err)
	}
	precip, err := AggregatePrecipitation(hourly)
	if err != nil {
		return Overview{}, fmt.Errorf("aggregate precipitation: %w", err)
	}

	if obs.Timezone != nil && (place.Timezone == "" || place.Timezone == "auto") {
		place.Timezone = obs.Timezone.String()
	}

	return Overview{
		Place:         place,
		Label:         place.Label(),
		Temperature:   temps,
		Precipitation: precip,
		Wind:          ClassifyWind(obs.DailyWind),
	}, nil
}

// DaySummary is everything an overview knows about one local date. Nil
// parts are absent from the corresponding daily sequence.
type DaySummary struct {
	Date          Date
	Temperature   *DailyTemperatureDew
	Precipitation *DailyPrecipitation
	Wind          *ClassifiedWind
}

// Days joins the temperature, precipitation and wind sequences by date, in
// ascending date order.
func (o Overview) Days() []DaySummary {
	byDate := make(map[Date]*DaySummary)
	day := func(d Date) *DaySummary {
		s, ok := byDate[d]
		if !ok {
			s = &DaySummary{Date: d}
			byDate[d] = s
		}
		return s
	}

	for i := range o.Temperature {
		day(o.Temperature[i].Date).Temperature = &o.Temperature[i]
	}
	for i := range o.Precipitation {
		day(o.Precipitation[i].Date).Precipitation = &o.Precipitation[i]
	}
	for i := range o.Wind.Days {
		day(o.Wind.Days[i].Date).Wind = &o.Wind.Days[i]
	}

	out := make([]DaySummary, 0, len(byDate))
	for _, s := range byDate {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
