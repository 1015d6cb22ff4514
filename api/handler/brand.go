package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/brandkit/api/middleware"
	"github.com/use-agent/brandkit/models"
)

// BrandRunner produces a brand profile for one website.
type BrandRunner interface {
	Run(ctx context.Context, raw string) (*models.BrandProfile, models.TimingInfo, error)
}

// Brand returns a handler for POST /api/v1/brand.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Run the pipeline under the request timeout.
//  3. Map INVALID_URL / FETCH_FAILED to 400 / 502, anything else to 500.
func Brand(runner BrandRunner, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.BrandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.BrandResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		profile, timing, err := runner.Run(ctx, req.URL)
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		if err != nil {
			slog.Warn("brand extraction failed",
				"request_id", middleware.GetRequestID(c),
				"url", req.URL,
				"error", err,
			)
			respondError(c, err, timing)
			return
		}

		c.JSON(http.StatusOK, models.BrandResponse{
			Success: true,
			Profile: profile,
			Timing:  timing,
		})
	}
}

// respondError maps a BrandError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var brandErr *models.BrandError
	if !errors.As(err, &brandErr) {
		brandErr = models.NewBrandError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(brandErr), models.BrandResponse{
		Success: false,
		Error:   brandErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.BrandError) int {
	switch e.Code {
	case models.ErrCodeInvalidURL, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
