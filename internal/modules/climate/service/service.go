package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"surfsup-api/internal/config"
	"surfsup-api/internal/modules/climate/repository"
	"surfsup-api/internal/modules/climate/types"
)

// ErrNoData means the requested window holds no matching records.
var ErrNoData = errors.New("no data")

// windowDays is the length of the trailing window used by precipitation and tobs.
const windowDays = 365

type Service struct {
	repository repository.ClimateRepository
	anchor     string
	now        func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithWindowAnchor selects config.WindowAnchorNow or config.WindowAnchorLatest.
func WithWindowAnchor(anchor string) Option {
	return func(s *Service) { s.anchor = anchor }
}

func NewService(repository repository.ClimateRepository, opts ...Option) *Service {
	s := &Service{
		repository: repository,
		anchor:     config.WindowAnchorNow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WindowStart returns the first day of the trailing window.
func (s *Service) WindowStart(ctx context.Context) (types.Date, error) {
	anchor := types.DateOf(s.now())
	if s.anchor == config.WindowAnchorLatest {
		latest, err := s.repository.LatestDate(ctx)
		if errors.Is(err, repository.ErrNoRows) {
			return types.Date{}, ErrNoData
		}
		if err != nil {
			return types.Date{}, err
		}
		anchor = latest
	}
	return anchor.AddDays(-windowDays), nil
}

// Precipitation maps each day of the trailing window to its amount. When a
// day has several rows the one stored last (highest id) wins.
func (s *Service) Precipitation(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64)

	since, err := s.WindowStart(ctx)
	if errors.Is(err, ErrNoData) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	recs, err := s.repository.ListPrecipitation(ctx, since)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		out[rec.Date.String()] = rec.Amount
	}
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]types.Station, error) {
	stations, err := s.repository.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	if stations == nil {
		stations = []types.Station{}
	}
	return stations, nil
}

// MostActiveTemperatures returns the trailing-window observations of the
// station with the most temperature rows in that window.
func (s *Service) MostActiveTemperatures(ctx context.Context) ([]types.TemperatureObservation, error) {
	since, err := s.WindowStart(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.repository.MostActiveStation(ctx, since)
	if errors.Is(err, repository.ErrNoRows) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "most active station",
		"station_id", active.StationID,
		"observations", active.Observations,
		"since", since.String(),
	)

	recs, err := s.repository.ListStationTemperatures(ctx, active.StationID, since)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoData
	}

	out := make([]types.TemperatureObservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, types.TemperatureObservation{Date: rec.Date, Temperature: rec.Temperature})
	}
	return out, nil
}

// TemperatureStats summarises temperatures from start through end (inclusive).
// A nil end leaves the window open.
func (s *Service) TemperatureStats(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureStats, error) {
	if end != nil && end.Before(start.Time) {
		return types.TemperatureStats{}, fmt.Errorf("start %s after end %s: %w", start, end, ErrNoData)
	}

	agg, err := s.repository.TemperatureAggregate(ctx, start, end)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	if agg.Count == 0 {
		return types.TemperatureStats{}, ErrNoData
	}

	avg := agg.Sum / float64(agg.Count)
	// rounding in Sum can push the mean a ulp outside [Min, Max]
	avg = max(agg.Min, min(avg, agg.Max))

	return types.TemperatureStats{Min: agg.Min, Avg: avg, Max: agg.Max}, nil
}
