package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"surfsup-api/internal/modules/climate/service"
	"surfsup-api/internal/modules/climate/types"
	"surfsup-api/internal/utils"
)

var errStartAfterEnd = errors.New("start after end")

func parseStart(r *http.Request) (types.Date, error) {
	return types.ParseDate(r.PathValue("start"))
}

// parseRange parses both path dates and rejects start > end.
func parseRange(r *http.Request) (start, end types.Date, err error) {
	start, err = types.ParseDate(r.PathValue("start"))
	if err != nil {
		return types.Date{}, types.Date{}, err
	}
	end, err = types.ParseDate(r.PathValue("end"))
	if err != nil {
		return types.Date{}, types.Date{}, err
	}
	if start.After(end.Time) {
		return types.Date{}, types.Date{}, errStartAfterEnd
	}
	return start, end, nil
}

func (c *climateControllerImpl) writeStats(w http.ResponseWriter, r *http.Request, start types.Date, end *types.Date) {
	stats, err := c.service.TemperatureStats(r.Context(), start, end)
	if errors.Is(err, service.ErrNoData) {
		utils.WriteError(w, http.StatusNotFound, msgNoRangeData)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "temperature stats: query failed", "start", start.String(), "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature statistics")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
