package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"magbook/internal/core"
	"magbook/internal/export"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  verr.Error(),
			"fields": verr.FieldNames(),
		})
	case errors.Is(err, core.ErrDuplicateMine):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrUnknownMine):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, export.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, export.ErrUnknownReport):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// parseFilter reads the mines, from and to query parameters. Mines may be
// repeated or comma-separated; dates use the YYYY-MM-DD form.
func parseFilter(r *http.Request) (core.Filter, error) {
	var f core.Filter

	for _, v := range r.URL.Query()["mines"] {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				f.Mines = append(f.Mines, m)
			}
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.From = d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		f.To = d
	}

	return f, nil
}

type quantitiesJSON struct {
	WaboxCartridges int `json:"wabox_cartridges"`
	Detonators      int `json:"detonators"`
	SafetyFuseM     int `json:"safety_fuse_m"`
}

func quantitiesOut(q core.Quantities) quantitiesJSON {
	return quantitiesJSON{
		WaboxCartridges: q.Get(core.WaboxCartridges),
		Detonators:      q.Get(core.Detonators),
		SafetyFuseM:     q.Get(core.SafetyFuse),
	}
}

func (q quantitiesJSON) toQuantities() core.Quantities {
	return core.Quantities{
		core.WaboxCartridges: q.WaboxCartridges,
		core.Detonators:      q.Detonators,
		core.SafetyFuse:      q.SafetyFuseM,
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
