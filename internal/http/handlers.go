package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"magbook/internal/core"
	"magbook/internal/export"
)

type issuanceRequest struct {
	Date       string `json:"date"`
	Mine       string `json:"mine"`
	IssuedBy   string `json:"issued_by"`
	ReceivedBy string `json:"received_by"`
	Remarks    string `json:"remarks"`
	quantitiesJSON
}

type issuanceResponse struct {
	Date       string `json:"date"`
	Mine       string `json:"mine"`
	IssuedBy   string `json:"issued_by"`
	ReceivedBy string `json:"received_by"`
	Remarks    string `json:"remarks"`
	quantitiesJSON
}

type stockRequest struct {
	SerialNo      string `json:"serial_no"`
	ReceivingDate string `json:"receiving_date"`
	ExplosiveType string `json:"explosive_type"`
	Quantity      int    `json:"quantity"`
}

type stockResponse struct {
	SerialNo      string `json:"serial_no"`
	ReceivingDate string `json:"receiving_date"`
	ExplosiveType string `json:"explosive_type"`
	Quantity      int    `json:"quantity"`
}

func (s *Server) handleMines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"mines": s.logbook.Mines()})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name := sanitizeInput(req.Name)
		if err := s.logbook.AddMine(r.Context(), name); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"mines": s.logbook.Mines()})
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleRenameMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.logbook.RenameMine(r.Context(), sanitizeInput(req.OldName), sanitizeInput(req.NewName)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mines": s.logbook.Mines()})
}

func (s *Server) handleIssuance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records := s.logbook.Issuance()
		out := make([]issuanceResponse, len(records))
		for i, rec := range records {
			out[i] = issuanceResponse{
				Date:           rec.Date.String(),
				Mine:           rec.Mine,
				IssuedBy:       rec.IssuedBy,
				ReceivedBy:     rec.ReceivedBy,
				Remarks:        rec.Remarks,
				quantitiesJSON: quantitiesOut(rec.Quantities),
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"issuance": out})
	case http.MethodPost:
		var req issuanceRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		date, err := core.ParseDate(req.Date)
		if err != nil {
			var v core.ValidationError
			v.Add("date", fmt.Sprintf("invalid date %q, want YYYY-MM-DD", req.Date))
			writeServiceError(w, v.OrNil())
			return
		}

		rec := core.IssuanceRecord{
			Date:       date,
			Mine:       sanitizeInput(req.Mine),
			IssuedBy:   sanitizeInput(req.IssuedBy),
			ReceivedBy: sanitizeInput(req.ReceivedBy),
			Remarks:    sanitizeInput(req.Remarks),
			Quantities: req.toQuantities(),
		}
		if err := s.logbook.AddIssuance(r.Context(), rec); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, issuanceResponse{
			Date:           rec.Date.String(),
			Mine:           rec.Mine,
			IssuedBy:       rec.IssuedBy,
			ReceivedBy:     rec.ReceivedBy,
			Remarks:        rec.Remarks,
			quantitiesJSON: quantitiesOut(rec.Quantities),
		})
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records := s.logbook.Stock()
		out := make([]stockResponse, len(records))
		for i, rec := range records {
			out[i] = stockResponse{
				SerialNo:      rec.SerialNo,
				ReceivingDate: rec.ReceivingDate.String(),
				ExplosiveType: rec.ExplosiveType.String(),
				Quantity:      rec.Quantity,
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"stock": out})
	case http.MethodPost:
		var req stockRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var v core.ValidationError
		date, err := core.ParseDate(req.ReceivingDate)
		if err != nil {
			v.Add("receiving_date", fmt.Sprintf("invalid date %q, want YYYY-MM-DD", req.ReceivingDate))
		}
		if v.OrNil() != nil {
			writeServiceError(w, v.OrNil())
			return
		}

		rec := core.StockRecord{
			SerialNo:      sanitizeInput(req.SerialNo),
			ReceivingDate: date,
			ExplosiveType: core.ExplosiveType(strings.TrimSpace(req.ExplosiveType)),
			Quantity:      req.Quantity,
		}
		if err := s.logbook.AddStock(r.Context(), rec); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stockResponse{
			SerialNo:      rec.SerialNo,
			ReceivingDate: rec.ReceivingDate.String(),
			ExplosiveType: rec.ExplosiveType.String(),
			Quantity:      rec.Quantity,
		})
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	threshold := s.lowThreshold
	if v := strings.TrimSpace(r.URL.Query().Get("threshold")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid threshold %q", v))
			return
		}
		threshold = n
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance := s.logbook.StockBalance()
	low := core.LowStock(balance, threshold)
	lowNames := make([]string, len(low))
	for i, t := range low {
		lowNames[i] = t.String()
	}

	// The balance covers the whole magazine; only the issued totals
	// follow the mine and date filter.
	issued := core.ApplyFilter(s.logbook.Issuance(), filter)

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":       quantitiesOut(balance),
		"issued_totals": quantitiesOut(core.Totals(issued)),
		"low_stock":     lowNames,
		"threshold":     threshold,
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = export.KindSummary
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := export.SelectReport(kind, s.logbook.Issuance(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":  table.Title,
		"header": table.Header,
		"rows":   table.Rows,
	})
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = export.KindSummary
	}
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := export.SelectReport(kind, s.logbook.Issuance(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := export.ToSpreadsheet(table)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	serveWorkbook(w, data, fmt.Sprintf("report_%s_%s.xlsx", kind, time.Now().Format("20060102")))
}

func (s *Server) handleIssuanceExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := export.IssuanceWorkbook(s.logbook.Issuance(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	serveWorkbook(w, data, fmt.Sprintf("issued_explosives_%s.xlsx", time.Now().Format("20060102")))
}

func serveWorkbook(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Failed to write workbook response", "error", err)
	}
}
