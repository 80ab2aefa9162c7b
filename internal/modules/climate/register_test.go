package climate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"surfsup-api/internal/config"
	"surfsup-api/internal/db/dbtest"
	"surfsup-api/internal/modules/climate/service"
)

func ptr[T any](v T) *T { return &v }

func newFeatureServer(t *testing.T, cfg config.Config, today string) *httptest.Server {
	t.Helper()

	conn := dbtest.Open(t)
	dbtest.Station(t, conn, 1, "WAIKIKI 717.2, HI US", 21.2716, -157.8168)
	dbtest.Station(t, conn, 2, "KANEOHE 838.1, HI US", 21.4234, -157.8015)
	dbtest.Temperatures(t, conn, 1, dbtest.Days(t, "2017-08-01", 10), 70)
	dbtest.Temperatures(t, conn, 2, dbtest.Days(t, "2017-08-01", 11), 60, 65, 70)
	dbtest.Precipitation(t, conn, "2017-08-22", ptr(0.5))
	dbtest.Precipitation(t, conn, "2017-08-23", ptr(0.0))
	dbtest.Precipitation(t, conn, "2015-01-01", ptr(3.0))

	clock, err := time.Parse(time.DateOnly, today)
	if err != nil {
		t.Fatalf("parse today: %v", err)
	}

	mux := http.NewServeMux()
	RegisterFeature(mux, conn, cfg, service.WithClock(func() time.Time { return clock }))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode
}

func TestRegisterFeature(t *testing.T) {
	ts := newFeatureServer(t, config.Config{WindowAnchor: config.WindowAnchorNow}, "2017-12-01")

	t.Run("precipitation", func(t *testing.T) {
		var body map[string]float64
		if code := getJSON(t, ts, "/api/v1.0/precipitation", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(body) != 2 || body["2017-08-22"] != 0.5 {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("stations", func(t *testing.T) {
		var body []map[string]any
		if code := getJSON(t, ts, "/api/v1.0/stations", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(body) != 2 || body[0]["id"] != 1.0 {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("tobs picks the busiest station", func(t *testing.T) {
		var body []map[string]any
		if code := getJSON(t, ts, "/api/v1.0/tobs", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if len(body) != 11 {
			t.Fatalf("len = %d; want 11", len(body))
		}
		if body[0]["date"] != "2017-08-01" || body[0]["temperature"] != 60.0 {
			t.Errorf("first = %v", body[0])
		}
	})

	t.Run("stats range", func(t *testing.T) {
		var body map[string]float64
		if code := getJSON(t, ts, "/api/v1.0/2017-08-01/2017-08-01", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if body["TMIN"] != 60 || body["TMAX"] != 70 || body["TAVG"] != 65 {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("stats after the last date", func(t *testing.T) {
		var body map[string]string
		if code := getJSON(t, ts, "/api/v1.0/2017-08-12", &body); code != http.StatusNotFound {
			t.Fatalf("status = %d; want 404", code)
		}
	})
}

func TestRegisterFeature_WindowAnchor(t *testing.T) {
	t.Run("now anchor with stale data", func(t *testing.T) {
		ts := newFeatureServer(t, config.Config{WindowAnchor: config.WindowAnchorNow}, "2026-10-15")

		var body map[string]string
		if code := getJSON(t, ts, "/api/v1.0/tobs", &body); code != http.StatusNotFound {
			t.Fatalf("status = %d; want 404", code)
		}
	})

	t.Run("latest anchor with stale data", func(t *testing.T) {
		ts := newFeatureServer(t, config.Config{WindowAnchor: config.WindowAnchorLatest}, "2026-10-15")

		var body []map[string]any
		if code := getJSON(t, ts, "/api/v1.0/tobs", &body); code != http.StatusOK {
			t.Fatalf("status = %d; want 200", code)
		}
		if len(body) != 11 {
			t.Errorf("len = %d; want 11", len(body))
		}
	})
}
