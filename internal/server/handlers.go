package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/model"
)

// maxImageBytes bounds one uploaded image.
const maxImageBytes = 10 << 20

func (s *Server) handleHealth(c *gin.Context) {
	a := s.current()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "civicgate",
		"mode":        a.Mode(),
		"policy":      a.Policy(),
		"vision_url":  a.VisionURL(),
		"config_hash": a.ConfigHash(),
	})
}

// handleAnalyze accepts a multipart form with an "image" file and a
// "text" (or legacy "description") field.
func (s *Server) handleAnalyze(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "missing image file",
		})
		return
	}

	text := c.PostForm("text")
	if text == "" {
		text = c.PostForm("description")
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "unreadable image upload",
		})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "unreadable image upload",
		})
		return
	}
	if len(image) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "image exceeds size limit",
		})
		return
	}

	sub := model.NewSubmission(image, fh.Header.Get("Content-Type"), text)
	rep, err := s.current().Analyze(c.Request.Context(), sub)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if !rep.Verdict.Accepted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":        "rejected",
			"message":       rep.Verdict.Reason,
			"is_fake":       true,
			"debug":         rep.Verdict.Debug,
			"priority_hint": rep.Triage.Priority,
			"trace_id":      rep.TraceID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"analysis": rep.Analysis,
		"trace_id": rep.TraceID,
	})
}

// handleAnalyzeText triages a description with no image. Hazard
// corroboration is an image-derived signal, so is_dangerous stays false.
func (s *Server) handleAnalyzeText(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "invalid JSON body",
		})
		return
	}

	rep, err := s.current().AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"triage":   rep.Triage,
		"trace_id": rep.TraceID,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	var inputErr *model.InputError
	if errors.As(err, &inputErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": inputErr.Error(),
		})
		return
	}
	s.log.Error("analyze failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": "internal error",
	})
}
