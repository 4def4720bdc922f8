package http

import (
	"net/http"

	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/workflow"
)

type submitResponse struct {
	transactionResponse
	State workflow.State `json:"state"`
}

func (s *Server) handleComposerState(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.composer.State()).Write(w)
}

func (s *Server) handleComposerNew(w http.ResponseWriter, r *http.Request) {
	st, err := s.composer.BeginAdd()
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(st).Write(w)
}

// handleComposerEdit loads transaction id into the draft, replacing any
// draft in progress.
func (s *Server) handleComposerEdit(w http.ResponseWriter, r *http.Request) {
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
	NewResponse().JSON(s.composer.BeginEdit(t)).Write(w)
}

func (s *Server) handleComposerChange(w http.ResponseWriter, r *http.Request) {
	d, err := ParseDraft(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.composer.Change(d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(st).Write(w)
}

// handleComposerSubmit commits the draft. On failure the draft is kept and the
// error is reported with an error notification.
func (s *Server) handleComposerSubmit(w http.ResponseWriter, r *http.Request) {
	t, from, err := s.composer.Submit(r.Context(), s.svc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.Balance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, notice, op, msg := http.StatusCreated, services.NoticeAdded, log.OpCreate, "Transaction created"
	if from.IsEditing() {
		status, notice, op, msg = http.StatusOK, services.NoticeUpdated, log.OpUpdate, "Transaction updated"
	}
	s.logMutation(r, op, msg, t)
	NewResponse().
		Status(status).
		TriggerChanged().
		Notify(notice).
		JSON(submitResponse{
			transactionResponse: transactionResponse{Transaction: t, Balance: balance},
			State:               s.composer.State(),
		}).
		Write(w)
}

func (s *Server) handleComposerCancel(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.composer.Cancel()).Write(w)
}
