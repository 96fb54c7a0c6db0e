package restserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/solarfleet/solarcast/internal/forecast"
	"github.com/solarfleet/solarcast/internal/solcast"
	"github.com/solarfleet/solarcast/pkg/config"
)

// targetLayouts are the accepted formats for the target query parameter,
// interpreted in the site's local zone when no offset is given.
var targetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Handlers holds the HTTP handlers for the REST server
type Handlers struct {
	ctrl *Controller
}

// NewHandlers creates handlers bound to a controller.
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{ctrl: ctrl}
}

type errorResponse struct {
	Error string `json:"error"`
}

type forecastResponse struct {
	Site    string            `json:"site,omitempty"`
	Count   int               `json:"count"`
	Records []forecast.Record `json:"records"`
}

type summaryResponse struct {
	Site string                `json:"site,omitempty"`
	Days []forecast.DaySummary `json:"days"`
}

// GetHealth reports service liveness.
func (h *Handlers) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetForecast returns the enriched forecast sequence for a configured site
// or ad hoc coordinates, optionally narrowed to the records nearest a target
// local timestamp.
func (h *Handlers) GetForecast(w http.ResponseWriter, r *http.Request) {
	site, query, err := h.resolveRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := h.loadRecords(r, site, query)
	if err != nil {
		h.ctrl.logger.Errorf("error loading forecast: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "unable to load forecast"})
		return
	}

	selected := forecast.Select(records, query.Target)
	resp := forecastResponse{Count: len(selected), Records: selected}
	if site != nil {
		resp.Site = site.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetForecastSummary returns per-day aggregates for the same request shape
// as GetForecast.
func (h *Handlers) GetForecastSummary(w http.ResponseWriter, r *http.Request) {
	site, query, err := h.resolveRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, err := h.loadRecords(r, site, query)
	if err != nil {
		h.ctrl.logger.Errorf("error loading forecast: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "unable to load forecast"})
		return
	}

	resp := summaryResponse{Days: forecast.Summarize(records, query.Latitude, query.Longitude)}
	if site != nil {
		resp.Site = site.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveRequest maps query parameters onto a processing query, from either
// a configured site name or explicit coordinates, plus optional panel
// overrides and a target timestamp.
func (h *Handlers) resolveRequest(r *http.Request) (*config.SiteData, forecast.Query, error) {
	q := r.URL.Query()
	var query forecast.Query
	var site *config.SiteData

	if name := q.Get("site"); name != "" {
		s, ok := h.ctrl.sites[name]
		if !ok {
			return nil, query, fmt.Errorf("unknown site %q", name)
		}
		site = &s
		query.Latitude = s.Latitude
		query.Longitude = s.Longitude
		query.TimezoneOffset = s.TimezoneOffset
		if s.Panel != nil {
			query.Panel = &forecast.PanelConfig{
				Mode:       forecast.PanelMode(s.Panel.Mode),
				TiltDeg:    s.Panel.TiltDeg,
				AzimuthDeg: s.Panel.AzimuthDeg,
			}
		}
	} else {
		var err error
		if query.Latitude, err = parseFloatParam(q.Get("latitude")); err != nil {
			return nil, query, fmt.Errorf("latitude: %w", err)
		}
		if query.Longitude, err = parseFloatParam(q.Get("longitude")); err != nil {
			return nil, query, fmt.Errorf("longitude: %w", err)
		}
		if tz := q.Get("timezone_offset"); tz != "" {
			if query.TimezoneOffset, err = strconv.Atoi(tz); err != nil {
				return nil, query, fmt.Errorf("timezone_offset: %w", err)
			}
		}
	}

	// Panel overrides apply on top of any site panel.
	if mode := q.Get("panel_mode"); mode != "" {
		panel := &forecast.PanelConfig{Mode: forecast.PanelMode(mode)}
		if v := q.Get("tilt"); v != "" {
			tilt, err := parseFloatParam(v)
			if err != nil {
				return nil, query, fmt.Errorf("tilt: %w", err)
			}
			panel.TiltDeg = tilt
		}
		if v := q.Get("panel_azimuth"); v != "" {
			az, err := parseFloatParam(v)
			if err != nil {
				return nil, query, fmt.Errorf("panel_azimuth: %w", err)
			}
			panel.AzimuthDeg = az
		}
		query.Panel = panel
	}

	if target := q.Get("target"); target != "" {
		t, err := parseTarget(target, query.Location())
		if err != nil {
			return nil, query, err
		}
		query.Target = &t
	}

	if err := query.Validate(); err != nil {
		return nil, query, err
	}
	return site, query, nil
}

// loadRecords serves from the freshest archived snapshot when the request
// names a site with a recent enough fetch; otherwise it fetches live.
func (h *Handlers) loadRecords(r *http.Request, site *config.SiteData, query forecast.Query) ([]forecast.Record, error) {
	hours := config.DefaultForecastHours
	interval := config.DefaultIntervalMinutes
	if site != nil {
		hours = site.Hours
		interval = site.IntervalMinutes

		if h.ctrl.db != nil {
			snap, records, err := h.ctrl.db.LatestSnapshot(site.Name)
			if err != nil {
				h.ctrl.logger.Warnf("error reading archive for site %s: %v", site.Name, err)
			} else if snap != nil && time.Since(snap.FetchedAt) < time.Duration(interval)*time.Minute {
				// Archived records carry site panel geometry; reprocessing is
				// unnecessary unless the request overrides the panel.
				if !panelOverridden(r) {
					return records, nil
				}
			}
		}
	}

	samples, err := h.ctrl.client.RadiationAndWeather(r.Context(), solcast.Request{
		Latitude:        query.Latitude,
		Longitude:       query.Longitude,
		Hours:           hours,
		IntervalMinutes: interval,
		Panel:           query.Panel,
	})
	if err != nil {
		return nil, err
	}

	return forecast.NewProcessor(h.ctrl.logger).Process(samples, query), nil
}

func panelOverridden(r *http.Request) bool {
	return r.URL.Query().Get("panel_mode") != ""
}

func parseFloatParam(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("missing required parameter")
	}
	return strconv.ParseFloat(v, 64)
}

func parseTarget(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range targetLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable target timestamp %q", v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
