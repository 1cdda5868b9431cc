package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusClientClosedRequest is the non-standard code for a client that hung
// up before the response was ready.
const statusClientClosedRequest = 499

type apiHandler struct {
	repo       domain.NeoRepository
	windowDays int
	logger     *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Stats     domain.Stats        `json:"stats"`
	Count     int                 `json:"count"`
	Neos      []domain.NeoSummary `json:"neos"`
}

// riskQuery holds the measurements of an ad-hoc scoring request.
type riskQuery struct {
	Hazardous      bool
	DiameterKm     float64 `validate:"gte=0"`
	MissDistanceKm float64 `validate:"gte=0"`
	VelocityKmh    float64 `validate:"gte=0"`
}

type riskResponse struct {
	domain.RiskAssessment
	Breakdown []domain.RiskBar `json:"breakdown"`
	Distance  string           `json:"distance"`
	Lunar     string           `json:"lunar"`
	Velocity  string           `json:"velocity"`
}

// listNeos serves the feed window as filtered, sorted summaries. Stats cover
// the whole window regardless of the filter.
func (h *apiHandler) listNeos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, end, err := domain.ParseWindow(q.Get("start_date"), q.Get("end_date"), h.windowDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hazardousOnly, err := parseBool(q.Get("hazardous"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hazardous: "+err.Error())
		return
	}

	feed, err := h.repo.Feed(r.Context(), start, end)
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}

	filter := domain.Filter{Query: q.Get("q"), HazardousOnly: hazardousOnly}
	neos := domain.SortNeos(filter.Apply(feed.Neos), key)

	sharedobs.WriteJSON(w, http.StatusOK, listResponse{
		StartDate: feed.StartDate,
		EndDate:   feed.EndDate,
		Stats:     domain.ComputeStats(feed),
		Count:     len(neos),
		Neos:      domain.SummarizeAll(neos),
	})
}

func (h *apiHandler) getNeo(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.Detail(rec))
}

func (h *apiHandler) scoreRisk(w http.ResponseWriter, r *http.Request) {
	rq, err := parseRiskQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := domain.CalculateRisk(domain.RiskInput{
		IsHazardous:       rq.Hazardous,
		DiameterMaxKm:     rq.DiameterKm,
		MissDistanceKm:    rq.MissDistanceKm,
		VelocityKmPerHour: rq.VelocityKmh,
	})
	sharedobs.WriteJSON(w, http.StatusOK, riskResponse{
		RiskAssessment: a,
		Breakdown:      domain.Breakdown(a),
		Distance:       domain.FormatDistance(rq.MissDistanceKm),
		Lunar:          domain.FormatLunar(rq.MissDistanceKm / domain.LunarDistanceKm),
		Velocity:       domain.FormatVelocity(rq.VelocityKmh),
	})
}

// upstreamError maps repository errors to status codes. Upstream details are
// logged, not returned.
func (h *apiHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "neo not found")
	case errors.Is(err, domain.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case r.Context().Err() != nil:
		w.WriteHeader(statusClientClosedRequest)
	default:
		session, _ := SessionFromContext(r.Context())
		h.logger.Error("neows request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"subject", session.Subject,
		)
		writeError(w, http.StatusBadGateway, "upstream data source unavailable")
	}
}

func parseRiskQuery(r *http.Request) (riskQuery, error) {
	q := r.URL.Query()
	var rq riskQuery
	var err error

	if rq.Hazardous, err = parseBool(q.Get("hazardous")); err != nil {
		return riskQuery{}, fmt.Errorf("invalid hazardous: %w", err)
	}
	if rq.DiameterKm, err = parseMeasurement(q, "diameter_km"); err != nil {
		return riskQuery{}, err
	}
	if rq.MissDistanceKm, err = parseMeasurement(q, "miss_distance_km"); err != nil {
		return riskQuery{}, err
	}
	if rq.VelocityKmh, err = parseMeasurement(q, "velocity_kmh"); err != nil {
		return riskQuery{}, err
	}
	if err := validate.Struct(rq); err != nil {
		return riskQuery{}, fmt.Errorf("invalid measurements: %w", err)
	}
	return rq, nil
}

// parseMeasurement reads a required finite number.
func parseMeasurement(q url.Values, key string) (float64, error) {
	vals := q[key]
	if len(vals) == 0 || vals[0] == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseFloat(vals[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: %q", key, vals[0])
	}
	return v, nil
}

// parseBool treats an empty value as false.
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: msg})
}
