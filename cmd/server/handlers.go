package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/pcos-risk/internal/apperr"
	"github.com/Skufu/pcos-risk/internal/features"
	"github.com/Skufu/pcos-risk/internal/scoring"
	"github.com/Skufu/pcos-risk/internal/store"
)

// Assessor scores one questionnaire.
type Assessor interface {
	Assess(in features.PartialInput) (scoring.Result, error)
}

// Recorder keeps scored assessments. It is nil when storage is disabled.
type Recorder interface {
	Save(ctx context.Context, a *store.Assessment) error
	Get(ctx context.Context, id uuid.UUID) (store.Assessment, error)
}

type api struct {
	engine   Assessor
	recorder Recorder
	logger   *zap.Logger
}

type predictResponse struct {
	scoring.Result
	scoring.Guidance
	ID string `json:"id,omitempty"`
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "PCOS Prediction API is running"})
}

func (a *api) predict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	in, err := features.ParseInput(body)
	if err != nil {
		a.fail(c, err)
		return
	}
	if missing := in.MissingRequired(); len(missing) > 0 {
		a.logger.Debug("prediction rejected",
			zap.Strings("missing", missing),
			zap.String("requestId", c.GetString(requestIDKey)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: age, weight, height"})
		return
	}

	res, err := a.engine.Assess(in)
	if err != nil {
		a.fail(c, err)
		return
	}

	resp := predictResponse{Result: res, Guidance: scoring.GuidanceFor(res.RiskLevel)}
	if a.recorder != nil {
		rec := &store.Assessment{
			Input:       compactJSON(body),
			Score:       res.Score,
			Probability: res.Probability,
			RiskLevel:   string(res.RiskLevel),
			Prediction:  res.Prediction,
		}
		// a storage failure still returns the score, just without an id
		if err := a.recorder.Save(c.Request.Context(), rec); err != nil {
			a.logger.Warn("assessment not stored",
				zap.Error(err),
				zap.String("requestId", c.GetString(requestIDKey)))
		} else {
			resp.ID = rec.ID.String()
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (a *api) getAssessment(c *gin.Context) {
	if a.recorder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment storage is disabled"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment id"})
		return
	}

	rec, err := a.recorder.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}
	if err != nil {
		a.logger.Error("assessment lookup failed", zap.Error(err), zap.Stringer("id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessment"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// fail maps err onto the response: caller mistakes are 400 with the error
// kind, everything else is a 500.
func (a *api) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if apperr.IsInput(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "type": kind.String()})
		return
	}

	a.logger.Error("prediction failed",
		zap.Error(err),
		zap.String("type", kind.String()),
		zap.String("requestId", c.GetString(requestIDKey)))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Failed to process prediction",
		"message": err.Error(),
	})
}

func compactJSON(b []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return json.RawMessage(strings.TrimSpace(string(b)))
	}
	return buf.Bytes()
}
