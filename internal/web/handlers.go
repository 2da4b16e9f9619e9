package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/logging"
)

// checkQuery is the query string of GET /fields/{field}/check.
type checkQuery struct {
	Value string `validate:"max=1024"`
	Kind  string `validate:"omitempty,oneof=text integer"`
}

// offendersQuery is the query string of POST /fields/{field}/offenders.
type offendersQuery struct {
	Limit int `validate:"gte=0,lte=100000"`
}

type healthResponse struct {
	Status        string `json:"status"`
	GeoRows       int    `json:"geo_rows"`
	CategoryCodes int    `json:"category_codes"`
	ActiveRuns    int    `json:"active_runs"`
}

type fieldsResponse struct {
	Fields []core.Field `json:"fields"`
}

type offendersResponse struct {
	Field     core.Field   `json:"field"`
	Count     int          `json:"count"`
	Truncated bool         `json:"truncated"`
	Offenders []core.Value `json:"offenders"`
}

type checkResponse struct {
	Field     core.Field `json:"field"`
	Value     core.Value `json:"value"`
	Valid     bool       `json:"valid"`
	Offending core.Value `json:"offending"`
}

// handleHealth reports the loaded reference sizes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.registry.Dataset()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		GeoRows:       ds.Geo.Len(),
		CategoryCodes: ds.Codes.Len(),
		ActiveRuns:    s.limiter.ActiveCount(),
	})
}

// handleListFields lists the field keys records may carry.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fieldsResponse{Fields: core.Fields()})
}

// handleReport processes a posted batch and returns the run.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.limiter.Acquire(ctx); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	records, err := s.decodeBody(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	run, err := s.processor.Run(ctx, records)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(ctx, "run_id", run.ID).Info("run completed",
		"records", run.Report.Records,
		"survivors", run.Report.Survivors,
		"geo_matches", run.Report.GeoMatches,
		"duration_ms", run.DurationMS,
	)
	writeJSON(w, http.StatusOK, run)
}

// handleOffenders lists the distinct invalid values of one field in a
// posted batch. ?limit=N caps the list; 0 means no cap.
func (s *Server) handleOffenders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	field, err := core.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var q offendersQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: limit %q", errInvalidQuery, raw))
			return
		}
		q.Limit = n
	}
	if err := s.validate.Struct(q); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errInvalidQuery, err))
		return
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	records, err := s.decodeBody(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	offenders, err := s.processor.Offenders(ctx, records, field)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := offendersResponse{Field: field, Count: len(offenders), Offenders: offenders}
	if q.Limit > 0 && len(offenders) > q.Limit {
		resp.Offenders = offenders[:q.Limit]
		resp.Truncated = true
	}
	if resp.Offenders == nil {
		resp.Offenders = []core.Value{}
	}

	logging.WithFields(ctx, "field", field).Debug("offenders listed", "count", resp.Count)
	writeJSON(w, http.StatusOK, resp)
}

// handleCheck validates a single value. ?kind=integer sends the value as
// a number, the way an unquoted JSON zip or phone arrives.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	field, err := core.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	query := r.URL.Query()
	if !query.Has("value") {
		respondError(w, r, fmt.Errorf("%w: value is required", errInvalidQuery))
		return
	}
	q := checkQuery{Value: query.Get("value"), Kind: query.Get("kind")}
	if err := s.validate.Struct(q); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errInvalidQuery, err))
		return
	}

	v := core.Text(q.Value)
	if q.Kind == "integer" {
		n, err := strconv.ParseInt(q.Value, 10, 64)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: value %q is not an integer", errInvalidQuery, q.Value))
			return
		}
		v = core.Integer(n)
	}

	writeJSON(w, http.StatusOK, checkResponse{
		Field:     field,
		Value:     v,
		Valid:     s.registry.ValidateValue(field, v),
		Offending: s.registry.DiagnoseValue(field, v),
	})
}

// decodeBody reads a JSON array of records, capped at the configured size.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) ([]core.Record, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxBodyBytes)
	return core.DecodeRecords(r.Body)
}
