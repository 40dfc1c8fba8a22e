package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/logger"
)

// AskPayload is the body of POST /ask.
type AskPayload struct {
	Question    string `json:"question" binding:"required"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	K           *int   `json:"k"`
	RAG         *bool  `json:"rag"`
	ShowSources bool   `json:"show_sources"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAsk(c *gin.Context) {
	var payload AskPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload: " + err.Error()})
		return
	}

	resp, err := s.ask.Ask(c.Request.Context(), payload.request())
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Warn("POST /ask failed: %v", err)
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// request applies the endpoint defaults: k=4 and RAG enabled.
func (p AskPayload) request() domain.AskRequest {
	req := domain.AskRequest{
		Question:    p.Question,
		Provider:    p.Provider,
		Model:       p.Model,
		K:           domain.DefaultTopK,
		UseRAG:      true,
		ShowSources: p.ShowSources,
	}
	if p.K != nil {
		req.K = *p.K
	}
	if p.RAG != nil {
		req.UseRAG = *p.RAG
	}
	return req
}

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInitialization):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
