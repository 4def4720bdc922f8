package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.filter.get()).Write(w)
}

// handleSetFilter replaces the stored criteria.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteriaBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.filter.set(c)
	s.writeFilteredOverview(w, r)
}

func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	s.filter.set(core.Criteria{})
	s.writeFilteredOverview(w, r)
}

func (s *Server) writeFilteredOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Overview(r.Context(), s.filter.get())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().TriggerChanged().JSON(ov).Write(w)
}
