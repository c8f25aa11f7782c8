package http

import (
	"net/http"

	"spendsight/internal/core"
)

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.analytics.MonthlySummary(r.Context(), ownerFrom(r), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := s.analytics.Trends(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, trends)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	breakdown, err := s.analytics.CategoryBreakdown(r.Context(), ownerFrom(r), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, breakdown)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.analytics.Comparison(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cmp)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	forecast, err := s.analytics.Forecast(r.Context(), ownerFrom(r), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, forecast)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	anomalies, err := s.analytics.Anomalies(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, anomalies)
}

func (s *Server) handleCategoryInsights(w http.ResponseWriter, r *http.Request) {
	category, err := core.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	insight, err := s.analytics.CategoryInsights(r.Context(), ownerFrom(r), category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, insight)
}
