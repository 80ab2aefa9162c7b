package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"surfsup-api/internal/modules/climate/types"
)

//go:embed sql/list-precipitation.sql
var listPrecipitationSQL string

//go:embed sql/list-stations.sql
var listStationsSQL string

//go:embed sql/most-active-station.sql
var mostActiveStationSQL string

//go:embed sql/list-station-temperatures.sql
var listStationTemperaturesSQL string

//go:embed sql/temperature-aggregate.sql
var temperatureAggregateSQL string

//go:embed sql/latest-date.sql
var latestDateSQL string

// ErrNoRows is returned when a single-row lookup finds nothing in the window.
var ErrNoRows = errors.New("no rows")

// ClimateRepository is the read-only query layer over the climate dataset.
// All date bounds are inclusive.
type ClimateRepository interface {
	ListPrecipitation(ctx context.Context, since types.Date) ([]types.PrecipitationRecord, error)
	ListStations(ctx context.Context) ([]types.Station, error)
	MostActiveStation(ctx context.Context, since types.Date) (types.StationActivity, error)
	ListStationTemperatures(ctx context.Context, stationID int64, since types.Date) ([]types.TemperatureRecord, error)
	TemperatureAggregate(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureAggregate, error)
	LatestDate(ctx context.Context) (types.Date, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListPrecipitation(ctx context.Context, since types.Date) ([]types.PrecipitationRecord, error) {
	rows, err := r.db.QueryContext(ctx, listPrecipitationSQL, since.String())
	if err != nil {
		return nil, fmt.Errorf("list precipitation: %w", err)
	}
	defer closeRows(rows, "precipitation")

	var out []types.PrecipitationRecord
	for rows.Next() {
		var (
			rec types.PrecipitationRecord
			day string
		)
		if err := rows.Scan(&rec.ID, &day, &rec.Amount); err != nil {
			return nil, fmt.Errorf("scan precipitation: %w", err)
		}
		if rec.Date, err = types.ParseDate(day); err != nil {
			return nil, fmt.Errorf("precipitation %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) ListStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, listStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer closeRows(rows, "stations")

	var out []types.Station
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) MostActiveStation(ctx context.Context, since types.Date) (types.StationActivity, error) {
	var a types.StationActivity
	err := r.db.QueryRowContext(ctx, mostActiveStationSQL, since.String()).Scan(&a.StationID, &a.Observations)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, ErrNoRows
	}
	if err != nil {
		return types.StationActivity{}, fmt.Errorf("most active station: %w", err)
	}
	return a, nil
}

func (r *repositoryImpl) ListStationTemperatures(ctx context.Context, stationID int64, since types.Date) ([]types.TemperatureRecord, error) {
	rows, err := r.db.QueryContext(ctx, listStationTemperaturesSQL, stationID, since.String())
	if err != nil {
		return nil, fmt.Errorf("list station temperatures: %w", err)
	}
	defer closeRows(rows, "station temperatures")

	var out []types.TemperatureRecord
	for rows.Next() {
		var (
			rec types.TemperatureRecord
			day string
		)
		if err := rows.Scan(&rec.ID, &rec.StationID, &day, &rec.Temperature); err != nil {
			return nil, fmt.Errorf("scan temperature: %w", err)
		}
		if rec.Date, err = types.ParseDate(day); err != nil {
			return nil, fmt.Errorf("temperature %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) TemperatureAggregate(ctx context.Context, start types.Date, end *types.Date) (types.TemperatureAggregate, error) {
	var endArg any
	if end != nil {
		endArg = end.String()
	}
	var a types.TemperatureAggregate
	err := r.db.QueryRowContext(ctx, temperatureAggregateSQL, start.String(), endArg).
		Scan(&a.Count, &a.Min, &a.Max, &a.Sum)
	if err != nil {
		return types.TemperatureAggregate{}, fmt.Errorf("temperature aggregate: %w", err)
	}
	return a, nil
}

func (r *repositoryImpl) LatestDate(ctx context.Context) (types.Date, error) {
	var day sql.NullString
	if err := r.db.QueryRowContext(ctx, latestDateSQL).Scan(&day); err != nil {
		return types.Date{}, fmt.Errorf("latest date: %w", err)
	}
	if !day.Valid {
		return types.Date{}, ErrNoRows
	}
	d, err := types.ParseDate(day.String)
	if err != nil {
		return types.Date{}, fmt.Errorf("latest date: %w", err)
	}
	return d, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close rows", "query", what, "error", err)
	}
}
