package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDailyReport serves GET /api/reports/daily?start=&end=. A missing end
// means today; a missing start spans the configured number of days.
func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	end := stats.Day(s.now())
	if v := q.Get("end"); v != "" {
		d, err := stats.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		end = d
	}
	start := end.AddDate(0, 0, -(s.config.DefaultDays - 1))
	if v := q.Get("start"); v != "" {
		d, err := stats.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		start = d
	}

	report, err := s.reporter.DailyReport(r.Context(), start, end)
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGameYear(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "year must be between 1 and 9999")
		return
	}

	report, err := s.reporter.GameYearReport(r.Context(), vars["id"], year)
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleOverall(w http.ResponseWriter, r *http.Request) {
	games, err := s.reporter.OverallPlaytime(r.Context())
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": games})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.reporter.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeReportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	var req RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startedAt, err := s.parseTime(req.StartedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := s.resolveName(r.Context(), req.GameID, req.GameName)

	err = s.ledger.RecordSession(r.Context(), ledger.NewSession{
		StartedAt: startedAt,
		Duration:  req.Duration,
		GameID:    req.GameID,
		GameName:  name,
		Source:    req.Source,
	})
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	req.StartedAt = store.FormatTimestamp(startedAt)
	req.GameName = name
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleManualTotal(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req ManualTotalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	at, err := s.parseTime(req.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	source := req.Source
	if source == "" {
		source = s.config.ManualSource
	}
	name := s.resolveName(r.Context(), gameID, req.GameName)

	delta, err := s.ledger.ApplyManualTotal(r.Context(), ledger.ManualTotal{
		At:       at,
		GameID:   gameID,
		GameName: name,
		Total:    req.Total,
		Source:   source,
	})
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ManualTotalResponse{GameID: gameID, Total: req.Total, Delta: delta})
}

// resolveName keeps a known game's stored name when the request omits one.
func (s *Server) resolveName(ctx context.Context, gameID, name string) string {
	if name != "" {
		return name
	}
	if g, err := s.reporter.GetGame(ctx, gameID); err == nil {
		return g.Name
	}
	return gameID
}

func (s *Server) parseTime(v string) (time.Time, error) {
	if v == "" {
		return s.now(), nil
	}
	return store.ParseTimestamp(v)
}

func (s *Server) writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, stats.ErrInvalidRange), errors.Is(err, stats.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Failed to build report")
		writeError(w, http.StatusInternalServerError, "Failed to build report")
	}
}

func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrMissingGameID) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to write session")
}
