package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/ocr"
	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/solver"
	"github.com/abhisek/mathstep/internal/store"
)

// HandleSolve solves a typed problem.
//
//	200 OK: SolveResponse
//	400 Bad Request: missing problem, or the problem could not be solved
func (s *Server) HandleSolve(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      "Invalid input",
			Suggestion: "Please provide a valid mathematical expression",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SolveTimeout)
	defer cancel()

	res, err := s.solver.Solve(ctx, req.Problem)
	if err != nil {
		if errors.Is(err, solver.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:      "Invalid input",
				Suggestion: "Please provide a valid mathematical expression",
			})
			return
		}
		s.internalError(c, err)
		return
	}

	display, truncated := truncate(req.Problem, maxDisplayProblem)
	if !res.Solved() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      "Unsolvable expression",
			Suggestion: "Try a different format or a simpler expression",
			Problem:    display,
			Type:       res.Type,
			Steps:      res.Steps,
		})
		return
	}

	resp := SolveResponse{
		Type:     res.Type,
		Problem:  display,
		Solution: res.Solution,
		Steps:    res.Steps,
	}
	if truncated {
		resp.FullProblem = req.Problem
	}
	c.JSON(http.StatusOK, resp)
}

// HandleUpload reads a problem from the multipart "image" field and solves
// it. An unsolved image problem is still a 200 with a null solution.
//
//	200 OK: UploadResponse
//	400 Bad Request: no image, image too large or unsupported, no text found
//	503 Service Unavailable: text detection is not configured
//	500 Internal Server Error: text detection failed
func (s *Server) HandleUpload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image file provided"})
		return
	}
	if fh.Size > ocr.MaxImageBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image too large (max 5MB)"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.internalError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, ocr.MaxImageBytes+1))
	if err != nil {
		s.internalError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.SolveTimeout)
	defer cancel()

	res, err := s.solver.SolveImage(ctx, data)
	switch {
	case err == nil:
	case errors.Is(err, ocr.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image file provided"})
		return
	case errors.Is(err, ocr.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image too large (max 5MB)"})
		return
	case errors.Is(err, ocr.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      "Unsupported image format",
			Suggestion: "Upload a PNG, JPEG, GIF or WebP image",
		})
		return
	case errors.Is(err, solver.ErrNoText):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      "No text found in image",
			Suggestion: "Try a clearer image or type the problem manually",
		})
		return
	case errors.Is(err, solver.ErrNoDetector):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:      "Image upload is not configured",
			Suggestion: "Type the problem instead",
		})
		return
	default:
		s.logger.Error("image processing failed",
			slog.String("request_id", requestID(c)),
			slog.Any("error", err))
		resp := ErrorResponse{
			Error:   "Image processing failed",
			Details: err.Error(),
		}
		var rej *llm.ErrRejected
		if errors.As(err, &rej) {
			resp.Suggestion = "Try a smaller or clearer image"
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	text, truncated := truncate(res.Problem, maxDisplayText)
	resp := UploadResponse{
		Type:          res.Type,
		ExtractedText: text,
		Solution:      res.Solution,
		Steps:         res.Steps,
	}
	if truncated {
		resp.FullText = res.Problem
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHistory lists recent solves, newest first.
//
//	GET /api/history?limit=20&type=algebra
func (s *Server) HandleHistory(c *gin.Context) {
	q := store.SolveQuery{QueryOpts: store.QueryOpts{Limit: 20}}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		q.Limit = n
	}
	if v := c.Query("type"); v != "" {
		t, err := problem.ParseType(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		q.Type = t
	}

	evs, err := s.repo.QuerySolves(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, err)
		return
	}
	items := make([]HistoryItem, 0, len(evs))
	for _, ev := range evs {
		items = append(items, HistoryItem{
			ID:        ev.ID,
			RequestID: ev.RequestID,
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
			Source:    ev.Source,
			Type:      ev.Type,
			Problem:   ev.Problem,
			Solution:  ev.Solution,
			Solved:    ev.Solved,
			Error:     ev.ErrorMessage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		slog.String("request_id", requestID(c)),
		slog.String("path", c.FullPath()),
		slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Details: err.Error(),
	})
}
