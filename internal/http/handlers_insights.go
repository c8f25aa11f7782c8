package http

import (
	"net/http"
)

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	resp, err := s.insights.Insights(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.insights.Chat(r.Context(), ownerFrom(r), req.Question)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, resp)
}

func (s *Server) handleInsightHistory(w http.ResponseWriter, r *http.Request) {
	digests, err := s.insights.History(r.Context(), ownerFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, digests)
}
