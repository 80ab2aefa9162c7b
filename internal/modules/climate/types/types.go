package types

import (
	"fmt"
	"strconv"
	"time"
)

// Date is a calendar day. The zero value is not a valid date.
type Date struct {
	time.Time
}

// ParseDate accepts exactly YYYY-MM-DD and rejects impossible days such as 2023-02-30.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Station struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type PrecipitationRecord struct {
	ID     int64
	Date   Date
	Amount float64
}

type TemperatureRecord struct {
	ID          int64
	StationID   int64
	Date        Date
	Temperature float64
}

// TemperatureObservation is one entry of the /tobs response.
type TemperatureObservation struct {
	Date        Date    `json:"date"`
	Temperature float64 `json:"temperature"`
}

// StationActivity is the number of temperature rows a station has in a window.
type StationActivity struct {
	StationID    int64
	Observations int
}

// TemperatureAggregate holds the raw SQL aggregates over a window.
// Min, Max and Sum are meaningless when Count is 0.
type TemperatureAggregate struct {
	Count int
	Min   float64
	Max   float64
	Sum   float64
}

type TemperatureStats struct {
	Min float64 `json:"TMIN"`
	Avg float64 `json:"TAVG"`
	Max float64 `json:"TMAX"`
}
