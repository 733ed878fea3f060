package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/gallery"
	"github.com/gauthierbraillon/mediamix/internal/generate"
	"github.com/gauthierbraillon/mediamix/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type noticeResponse struct {
	Source  string    `json:"source"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type galleryResponse struct {
	Items      []content.Item  `json:"items"`
	Count      int             `json:"count"`
	Total      int             `json:"total"`
	Version    uint64          `json:"version"`
	LastNotice *noticeResponse `json:"last_notice,omitempty"`
}

type generateRequest struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

type generateResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.cfg.Version,
		"items":   s.state.Count(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) listGallery(c *gin.Context) {
	opts, err := viewOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	items := s.state.View(opts)
	resp := galleryResponse{
		Items:   items,
		Count:   len(items),
		Total:   s.state.Count(),
		Version: s.state.Version(),
	}
	if s.refresher != nil {
		if n, ok := s.refresher.LastNotice(); ok {
			resp.LastNotice = &noticeResponse{Source: n.Source, Message: n.Message, At: n.At}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func viewOptions(c *gin.Context) (gallery.ViewOptions, error) {
	var opts gallery.ViewOptions
	for _, raw := range c.QueryArray("type") {
		t, ok := content.ParseType(raw)
		if !ok {
			return opts, errors.New("type must be image, video or text")
		}
		opts.Types = append(opts.Types, t)
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, errors.New("limit must be a non-negative integer")
		}
		opts.Limit = limit
	}
	return opts, nil
}

func (s *Server) partitions(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Partition())
}

func (s *Server) renderFailed(c *gin.Context) {
	item, err := s.state.MarkRenderFailed(c.Param("id"))
	if errors.Is(err, content.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.RenderFailuresTotal.Inc()
	}
	s.log.Warn("item preview failed",
		logger.Error(&content.RenderFailure{ItemID: item.ID, Placeholder: item.Embed.Placeholder}))
	c.JSON(http.StatusOK, item)
}

func (s *Server) refresh(c *gin.Context) {
	if s.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "refresh is not available"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"triggered": s.refresher.TriggerNow()})
}

func (s *Server) generate(c *gin.Context) {
	if s.generator == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: generate.ErrWebhookNotConfigured.Error()})
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	contentType := content.Type(req.ContentType)
	if contentType == "" {
		contentType = content.TypeImage
	}

	receipt, err := s.generator.Submit(c.Request.Context(), req.URL, contentType)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, generateResponse{RequestID: receipt.RequestID, Message: receipt.Message})
	case errors.Is(err, generate.ErrURLRequired),
		errors.Is(err, generate.ErrInvalidURL),
		errors.Is(err, generate.ErrInvalidContentType):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, generate.ErrWebhookNotConfigured):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to process your request, please try again"})
	}
}
