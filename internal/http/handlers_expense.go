package http

import (
	"net/http"
	"time"

	"spendsight/internal/core"
)

// expensePayload is the wire shape for expense reads and writes. Dates
// travel as YYYY-MM-DD; RFC 3339 timestamps are accepted on input.
type expensePayload struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (p expensePayload) toExpense(owner, id string) (core.Expense, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          id,
		Owner:       owner,
		Title:       p.Title,
		Amount:      p.Amount,
		Category:    core.Category(p.Category),
		Date:        date,
		Description: p.Description,
	}, nil
}

func toExpensePayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      e.Amount,
		Category:    string(e.Category),
		Date:        e.Date.Format(dateLayout),
		Description: e.Description,
	}
}

func toExpensePayloads(expenses []core.Expense) []expensePayload {
	out := make([]expensePayload, len(expenses))
	for i, e := range expenses {
		out[i] = toExpensePayload(e)
	}
	return out
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var month core.Month
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		month = m
	}
	var category core.Category
	if v := r.URL.Query().Get("category"); v != "" {
		c, err := core.ParseCategory(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	expenses, err := s.expenses.List(r.Context(), ownerFrom(r), month, category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toExpensePayloads(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := req.toExpense(ownerFrom(r), "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.expenses.Create(r.Context(), expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusCreated, toExpensePayload(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.Get(r.Context(), ownerFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toExpensePayload(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expensePayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := req.toExpense(ownerFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.expenses.Update(r.Context(), expense); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusOK, toExpensePayload(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), ownerFrom(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cache.Clear()
	writeData(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
