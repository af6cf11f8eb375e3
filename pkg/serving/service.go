package serving

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/common/models"
	"github.com/aarogya-ai/platform/pkg/features"
	"github.com/aarogya-ai/platform/pkg/imaging"
	"github.com/aarogya-ai/platform/pkg/observability/metrics"
)

const (
	PneumoniaDetected   = "Pneumonia Detected"
	NoPneumoniaDetected = "No Pneumonia Detected"

	pneumoniaThreshold = 0.5

	EventPredictionCompleted = "prediction.completed"
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrEmptyOutput  = errors.New("model returned no output")
	ErrNonFinite    = errors.New("model returned a non-finite value")
	ErrInvalidImage = imaging.ErrInvalidImage
)

// Upload is an image file received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

// EventPublisher receives a summary of every finished prediction.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Service dispatches prediction requests to the loaded models. All of its
// dependencies are fixed at construction and shared read-only by requests.
type Service struct {
	registry  *Registry
	cache     ResultCache
	events    EventPublisher
	maxPixels int
}

// NewService wires the dispatcher. cache and events may be nil.
func NewService(registry *Registry, cache ResultCache, events EventPublisher) *Service {
	return &Service{registry: registry, cache: cache, events: events, maxPixels: imaging.DefaultMaxPixels}
}

// SetMaxImagePixels bounds the width*height of accepted uploads. Call it
// before serving; zero or less disables the bound.
func (s *Service) SetMaxImagePixels(n int) {
	s.maxPixels = n
}

func (s *Service) Models() []models.ModelInfo {
	return s.registry.Models()
}

// PredictLungImage reports the pneumonia probability and its label.
func (s *Service) PredictLungImage(ctx context.Context, upload *Upload) (models.ImageResult, error) {
	return s.predictImage(ctx, LungXRay, upload, thresholdReadout)
}

// PredictBoneImage reports the strongest class activation.
func (s *Service) PredictBoneImage(ctx context.Context, upload *Upload) (models.ImageResult, error) {
	return s.predictImage(ctx, BonesXRay, upload, maxReadout)
}

// PredictKidneyImage reports the strongest class activation.
func (s *Service) PredictKidneyImage(ctx context.Context, upload *Upload) (models.ImageResult, error) {
	return s.predictImage(ctx, KidneyXRay, upload, maxReadout)
}

func (s *Service) PredictHeartRisk(ctx context.Context, req features.RiskRequest) (models.RiskResult, error) {
	return s.predictRisk(ctx, HeartRisk, req)
}

func (s *Service) PredictDiabetesRisk(ctx context.Context, req features.RiskRequest) (models.RiskResult, error) {
	return s.predictRisk(ctx, Diabetes, req)
}

func (s *Service) PredictLungRisk(ctx context.Context, req features.RiskRequest) (models.RiskResult, error) {
	return s.predictRisk(ctx, LungCancer, req)
}

func thresholdReadout(output []float32) models.ImageResult {
	prob := float64(output[0])
	label := NoPneumoniaDetected
	if prob >= pneumoniaThreshold {
		label = PneumoniaDetected
	}
	return models.ImageResult{Label: label, Confidence: prob}
}

func maxReadout(output []float32) models.ImageResult {
	best := output[0]
	for _, v := range output[1:] {
		if v > best {
			best = v
		}
	}
	return models.ImageResult{Confidence: float64(best)}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Service) predictImage(ctx context.Context, name string, upload *Upload, readout func([]float32) models.ImageResult) (models.ImageResult, error) {
	if upload == nil {
		metrics.ObserveMissingUpload(name)
		return models.ImageResult{}, ErrNoFile
	}
	model, err := s.registry.Image(name)
	if err != nil {
		return models.ImageResult{}, err
	}

	start := time.Now()
	key := uploadKey(name, upload.Data)
	var result models.ImageResult
	if s.lookup(ctx, name, key, &result) {
		return result, nil
	}

	tensor, err := imaging.Normalize(bytes.NewReader(upload.Data), s.maxPixels)
	if err != nil {
		return models.ImageResult{}, err
	}

	output, err := model.Predict(tensor)
	if err != nil {
		metrics.ObserveFailure(name)
		return models.ImageResult{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(output) == 0 {
		metrics.ObserveFailure(name)
		return models.ImageResult{}, fmt.Errorf("%s: %w", name, ErrEmptyOutput)
	}
	result = readout(output)
	if !finite(result.Confidence) {
		metrics.ObserveFailure(name)
		return models.ImageResult{}, fmt.Errorf("%s: %w", name, ErrNonFinite)
	}

	s.store(ctx, name, key, result)
	s.completed(ctx, name, start, map[string]interface{}{
		"filename":   upload.Filename,
		"bytes":      len(upload.Data),
		"label":      result.Label,
		"confidence": result.Confidence,
	})
	return result, nil
}

func (s *Service) predictRisk(ctx context.Context, name string, req features.RiskRequest) (models.RiskResult, error) {
	entry, err := s.registry.risk(name)
	if err != nil {
		return models.RiskResult{}, err
	}

	start := time.Now()
	row := entry.spec.Assemble(req, entry.names)
	key := rowKey(name, row.Values)
	var result models.RiskResult
	if s.lookup(ctx, name, key, &result) {
		return result, nil
	}

	proba, err := entry.model.PredictProba(row.Values)
	if err != nil {
		metrics.ObserveFailure(name)
		return models.RiskResult{}, err
	}
	if !finite(proba[1]) {
		metrics.ObserveFailure(name)
		return models.RiskResult{}, fmt.Errorf("%s: %w", name, ErrNonFinite)
	}
	result = models.RiskResult{RiskPercentage: features.Round2(proba[1] * 100)}

	s.store(ctx, name, key, result)
	s.completed(ctx, name, start, map[string]interface{}{
		"features":        row.Map(),
		"risk_percentage": result.RiskPercentage,
	})
	return result, nil
}

func (s *Service) lookup(ctx context.Context, name, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		logger.Log.WithError(err).WithField("model", name).Warn("result cache read failed")
		return false
	}
	if hit {
		metrics.ObserveCacheHit(name)
		metrics.ObservePrediction(name)
	}
	return hit
}

func (s *Service) store(ctx context.Context, name, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		logger.Log.WithError(err).WithField("model", name).Warn("result cache write failed")
	}
}

func (s *Service) completed(ctx context.Context, name string, start time.Time, data map[string]interface{}) {
	latency := time.Since(start)
	metrics.ObservePrediction(name)

	logger.Log.WithFields(map[string]interface{}{
		"model":      name,
		"latency_ms": latency.Milliseconds(),
	}).Info("Prediction completed")

	if s.events == nil {
		return
	}
	data["model"] = name
	data["latency_ms"] = float64(latency.Microseconds()) / 1000.0
	if err := s.events.PublishEvent(ctx, EventPredictionCompleted, name, data); err != nil {
		logger.Log.WithError(err).WithField("model", name).Warn("prediction event not published")
	}
}
