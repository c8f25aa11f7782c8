package http

import (
	"net/http"

	"spendsight/internal/core"
)

type budgetPayload struct {
	ID             string  `json:"id,omitempty"`
	Category       string  `json:"category"`
	Month          string  `json:"month"`
	Limit          float64 `json:"limit"`
	AlertThreshold int     `json:"alertThreshold,omitempty"`
	Description    string  `json:"description,omitempty"`
	Active         bool    `json:"active"`
}

func (p budgetPayload) toBudget(owner, id string) core.Budget {
	threshold := p.AlertThreshold
	if threshold == 0 {
		threshold = core.DefaultAlertThreshold
	}
	return core.Budget{
		ID:             id,
		Owner:          owner,
		Category:       core.Category(p.Category),
		Month:          core.Month(p.Month),
		Limit:          p.Limit,
		AlertThreshold: threshold,
		Description:    p.Description,
		Active:         p.Active,
	}
}

func toBudgetPayload(b core.Budget) budgetPayload {
	return budgetPayload{
		ID:             b.ID,
		Category:       string(b.Category),
		Month:          string(b.Month),
		Limit:          b.Limit,
		AlertThreshold: b.AlertThreshold,
		Description:    b.Description,
		Active:         b.Active,
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	var month core.Month
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		month = m
	}

	budgets, err := s.budgets.List(r.Context(), ownerFrom(r), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]budgetPayload, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetPayload(b)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetPayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	budget := req.toBudget(ownerFrom(r), "")
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.budgets.Create(r.Context(), budget)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusCreated, toBudgetPayload(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.budgets.Get(r.Context(), ownerFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBudgetPayload(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetPayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	budget := req.toBudget(ownerFrom(r), r.PathValue("id"))
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.budgets.Update(r.Context(), budget); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusOK, toBudgetPayload(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Delete(r.Context(), ownerFrom(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
