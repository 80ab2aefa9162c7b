package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"surfsup-api/internal/modules/climate/service"
	"surfsup-api/internal/utils"
)

const (
	aboutText = "This is the About page."

	msgInvalidStart   = "Invalid start date format. Use YYYY-MM-DD."
	msgInvalidRange   = "Invalid date format. Use YYYY-MM-DD."
	msgStartAfterEnd  = "'start' must be <= 'end'"
	msgNoRangeData    = "No temperature data available for the specified date range."
	msgNoPreviousYear = "No temperature data available for the previous year."
)

// routeIndex is the discovery document served at "/".
var routeIndex = map[string]string{
	"About":                                   "/about",
	"Precipitation":                           "/api/v1.0/precipitation",
	"Stations":                                "/api/v1.0/stations",
	"Temperature at most active station":      "/api/v1.0/tobs",
	"Temperature on specified start date":     "/api/v1.0/<start>",
	"Temperature between two specified dates": "/api/v1.0/<start>/<end>",
}

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, routeIndex)
}

func (c *climateControllerImpl) handleAbout(w http.ResponseWriter, r *http.Request) {
	utils.WriteText(w, http.StatusOK, aboutText)
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	data, err := c.service.Precipitation(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, data)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	observations, err := c.service.MostActiveTemperatures(r.Context())
	if errors.Is(err, service.ErrNoData) {
		utils.WriteError(w, http.StatusNotFound, msgNoPreviousYear)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start, err := parseStart(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidStart)
		return
	}
	c.writeStats(w, r, start, nil)
}

func (c *climateControllerImpl) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if errors.Is(err, errStartAfterEnd) {
		utils.WriteError(w, http.StatusBadRequest, msgStartAfterEnd)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidRange)
		return
	}
	c.writeStats(w, r, start, &end)
}
