package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/aarogya-ai/platform/pkg/common/logger"
	"github.com/aarogya-ai/platform/pkg/common/models"
	"github.com/aarogya-ai/platform/pkg/features"
	"github.com/aarogya-ai/platform/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

const (
	uploadField     = "file"
	multipartMemory = 10 << 20
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type imageOp func(ctx context.Context, upload *Upload) (models.ImageResult, error)

type riskOp func(ctx context.Context, req features.RiskRequest) (models.RiskResult, error)

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/", h.handleHome).Methods(http.MethodGet)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/models", h.handleModels).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)

	lungImage := h.image(h.service.PredictLungImage)
	boneImage := h.image(h.service.PredictBoneImage)
	kidneyImage := h.image(h.service.PredictKidneyImage)
	heartRisk := h.risk(h.service.PredictHeartRisk)
	diabetesRisk := h.risk(h.service.PredictDiabetesRisk)
	lungRisk := h.risk(h.service.PredictLungRisk)

	router.HandleFunc("/predict/xray/lung", lungImage).Methods(http.MethodPost)
	router.HandleFunc("/predict/xray/bones", boneImage).Methods(http.MethodPost)
	router.HandleFunc("/predict/xray/kidney", kidneyImage).Methods(http.MethodPost)
	router.HandleFunc("/predict/bones", boneImage).Methods(http.MethodPost)
	router.HandleFunc("/predict/kidney", kidneyImage).Methods(http.MethodPost)

	router.HandleFunc("/predict/risk/heart", heartRisk).Methods(http.MethodPost)
	router.HandleFunc("/predict/risk/diabetes", diabetesRisk).Methods(http.MethodPost)
	router.HandleFunc("/predict/risk/lung", lungRisk).Methods(http.MethodPost)
	router.HandleFunc("/predict/heart", heartRisk).Methods(http.MethodPost)
	router.HandleFunc("/predict/diabetes", diabetesRisk).Methods(http.MethodPost)

	// /predict/lung served the X-ray model in one deployment and the
	// questionnaire in another; the body type decides.
	router.HandleFunc("/predict/lung", lungRisk).Methods(http.MethodPost).MatcherFunc(isJSON)
	router.HandleFunc("/predict/lung", lungImage).Methods(http.MethodPost)
}

func isJSON(r *http.Request, _ *mux.RouteMatch) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func (h *HTTPHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{
		Status:  "Aarogya AI Backend Running",
		Message: "X-ray and risk models loaded successfully",
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HTTPHandler) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Models())
}

func (h *HTTPHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w)
}

func (h *HTTPHandler) image(op imageOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := readUpload(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
				return
			}
			logger.Log.WithError(err).Error("failed to read upload")
			writeError(w, http.StatusBadRequest, "Invalid upload")
			return
		}

		result, err := op(r.Context(), upload)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *HTTPHandler) risk(op riskOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRiskRequest(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			logger.Log.WithError(err).Warn("invalid risk payload")
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := op(r.Context(), req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoFile):
		writeError(w, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Invalid image")
	case errors.Is(err, ErrModelNotLoaded):
		logger.Log.WithError(err).Error("model missing from registry")
		writeError(w, http.StatusServiceUnavailable, "Model not available")
	default:
		logger.Log.WithError(err).WithField("path", r.URL.Path).Error("prediction failed")
		writeError(w, http.StatusInternalServerError, "Prediction failed")
	}
}

// readUpload returns nil without error when the request carries no file.
func readUpload(r *http.Request) (*Upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, nil
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: header.Filename, Data: data}, nil
}

// decodeRiskRequest treats an empty body as an empty questionnaire.
func decodeRiskRequest(body io.Reader) (features.RiskRequest, error) {
	var req features.RiskRequest
	data, err := io.ReadAll(body)
	if err != nil {
		return req, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return features.RiskRequest{}, err
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}
