package http

import (
	"log/slog"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Balance     core.Money       `json:"balance"`
}

// handleListTransactions returns the overview under the stored filter, with
// any criteria in the query string taking precedence.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query, err := ParseQueryCriteria(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ov, err := s.svc.Overview(r.Context(), s.filter.get().Override(query))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(ov).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDraft(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Create(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logMutation(r, log.OpCreate, "Transaction created", t)
	s.respondMutation(w, r, http.StatusCreated, t, services.NoticeAdded)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := ParseDraft(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if d.ID != 0 && d.ID != id {
		writeError(w, r, badRequest("body id %d does not match path id %d", d.ID, id))
		return
	}
	t, err := s.svc.Edit(r.Context(), id, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logMutation(r, log.OpUpdate, "Transaction updated", t)
	s.respondMutation(w, r, http.StatusOK, t, services.NoticeUpdated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logMutation(r, log.OpDelete, "Transaction deleted", t)
	s.respondMutation(w, r, http.StatusOK, t, services.NoticeDeleted)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.svc.Balance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(map[string]core.Money{"balance": balance}).Write(w)
}

// handleExport downloads every transaction, ignoring the filter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ts, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var a export.Artifact
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		a, err = export.JSON(ts)
	case "xlsx":
		a, err = export.XLSX(ts)
	default:
		writeError(w, r, badRequest("unsupported export format %q", format))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).Info("Transactions exported",
		log.FieldOperation, log.OpExport, "filename", a.Filename, "count", len(ts))
	NewResponse().Attachment(a).Write(w)
}

func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, status int, t core.Transaction, n services.Notice) {
	balance, err := s.svc.Balance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Status(status).
		TriggerChanged().
		Notify(n).
		JSON(transactionResponse{Transaction: t, Balance: balance}).
		Write(w)
}

func (s *Server) logMutation(r *http.Request, op, msg string, t core.Transaction) {
	ctx := r.Context()
	fields := log.NewFields().
		WithOperation(op).
		WithTransaction(t.ID, string(t.Type), t.Amount.Cents, t.Category, t.Date.String())
	log.FromContext(ctx).LogFields(ctx, slog.LevelInfo, msg, fields)
}
