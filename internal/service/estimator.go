package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"vlxd/internal/logger"
	"vlxd/internal/metrics"
	"vlxd/internal/model"
	"vlxd/internal/utils"
)

// User-facing estimator messages
const (
	MsgNotConfigured = "Dịch vụ AI chưa được cấu hình (thiếu API key). Vui lòng liên hệ quản trị viên."
	MsgServiceBusy   = "Hệ thống AI đang bận. Vui lòng thử lại sau ít phút."
	MsgEmptyImage    = "Thiếu dữ liệu ảnh bản vẽ."
	MsgInvalidImage  = "Ảnh không hợp lệ: dữ liệu base64 bị lỗi."
	MsgEmptyText     = "Vui lòng nhập mô tả công trình."
)

// Progress stages reported by the streaming entry points
const (
	StageAnalyzing  = "analyzing"
	StageRetrying   = "retrying"
	StageParsed     = "parsed"
	StageCalculated = "calculated"
	StageEnriched   = "enriched"
)

// ProgressFunc receives pipeline stages as they complete
type ProgressFunc func(stage string, data any)

// ProductCatalog is the read-only product lookup used for enrichment
type ProductCatalog interface {
	// FindActiveProductsByNameContains returns active products whose name contains any
	// fragment, case-insensitively, cheapest first.
	FindActiveProductsByNameContains(ctx context.Context, fragments []string, limit int) ([]model.Product, error)
}

var dataURLPrefix = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,`)

// Estimator turns a floor plan image or a text description into a priced bill of materials
type Estimator struct {
	client  VisionClient
	catalog ProductCatalog
	retry   RetryPolicy
	logger  *zap.Logger
}

// NewEstimator wires the estimator. client may be nil, in which case every
// call returns the "not configured" result.
func NewEstimator(client VisionClient, catalog ProductCatalog, retry RetryPolicy, log *zap.Logger) *Estimator {
	return &Estimator{
		client:  client,
		catalog: catalog,
		retry:   retry,
		logger:  logger.OrNop(log),
	}
}

// AnalyzeFloorPlanImage estimates materials from a base64 image, optionally
// prefixed with a data:image/<type>;base64, marker.
func (e *Estimator) AnalyzeFloorPlanImage(ctx context.Context, imageData string, projectType model.ProjectType) *model.EstimatorResult {
	return e.AnalyzeFloorPlanImageStream(ctx, imageData, projectType, nil)
}

// AnalyzeFloorPlanImageStream is AnalyzeFloorPlanImage with stage reporting
func (e *Estimator) AnalyzeFloorPlanImageStream(ctx context.Context, imageData string, projectType model.ProjectType, progress ProgressFunc) *model.EstimatorResult {
	if !e.configured() {
		return e.finish("image", model.FailedResult(projectType, MsgNotConfigured), time.Now())
	}

	image, mimeType, err := decodeImagePayload(imageData)
	if err != nil {
		e.logger.Warn("rejecting image payload", zap.Error(err))
		msg := MsgInvalidImage
		if strings.TrimSpace(imageData) == "" {
			msg = MsgEmptyImage
		}
		return e.finish("image", model.FailedResult(projectType, msg), time.Now())
	}

	prompt := buildAnalysisPrompt(projectType, "", true)
	return e.run(ctx, "image", prompt, image, mimeType, projectType, progress)
}

// EstimateFromText estimates materials from a free-form Vietnamese description
func (e *Estimator) EstimateFromText(ctx context.Context, description string, projectType model.ProjectType) *model.EstimatorResult {
	return e.EstimateFromTextStream(ctx, description, projectType, nil)
}

// EstimateFromTextStream is EstimateFromText with stage reporting
func (e *Estimator) EstimateFromTextStream(ctx context.Context, description string, projectType model.ProjectType, progress ProgressFunc) *model.EstimatorResult {
	if !e.configured() {
		return e.finish("text", model.FailedResult(projectType, MsgNotConfigured), time.Now())
	}
	if strings.TrimSpace(description) == "" {
		return e.finish("text", model.FailedResult(projectType, MsgEmptyText), time.Now())
	}

	prompt := buildAnalysisPrompt(projectType, description, false)
	return e.run(ctx, "text", prompt, nil, "", projectType, progress)
}

func (e *Estimator) configured() bool {
	return e.client != nil && e.client.IsEnabled()
}

// run is the shared pipeline: model call, parse, calculate, enrich, validate
func (e *Estimator) run(ctx context.Context, source, prompt string, image []byte, mimeType string, projectType model.ProjectType, progress ProgressFunc) *model.EstimatorResult {
	start := time.Now()
	report := func(stage string, data any) {
		if progress != nil {
			progress(stage, data)
		}
	}

	policy := e.retry
	policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		metrics.ModelCallAttempts.WithLabelValues("transient").Inc()
		e.logger.Warn("model call failed, retrying",
			zap.String("source", source),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		report(StageRetrying, map[string]any{"attempt": attempt, "waitMs": wait.Milliseconds()})
	}

	report(StageAnalyzing, map[string]any{"source": source, "projectType": projectType})

	text, err := WithRetry(ctx, policy, func(ctx context.Context) (string, error) {
		return e.client.GenerateContent(ctx, prompt, image, mimeType)
	})
	if err != nil {
		metrics.ModelCallAttempts.WithLabelValues("error").Inc()
		e.logger.Error("model call failed", zap.String("source", source), zap.Error(err))
		return e.finish(source, model.FailedResult(projectType, userFacingError(err)), start)
	}
	metrics.ModelCallAttempts.WithLabelValues("ok").Inc()

	analysis := parseAnalysis(text)
	metrics.AnalysisParseStatus.WithLabelValues(string(analysis.Status)).Inc()
	if analysis.Status != model.ParsedOK {
		e.logger.Warn("model reply was not clean JSON",
			zap.String("parse_status", string(analysis.Status)),
			zap.Strings("problems", analysis.Problems),
			zap.String("reply", truncate(text, 300)),
		)
	}
	report(StageParsed, map[string]any{
		"parseStatus": analysis.Status,
		"rooms":       analysis.Rooms,
		"totalArea":   analysis.TotalArea,
	})

	materials := CalculateMaterials(analysis.TotalArea, projectType, analysis.Rooms)
	report(StageCalculated, map[string]any{"materials": len(materials)})

	enriched := e.EnrichMaterialsWithProducts(ctx, materials)
	cost := TotalCost(enriched)
	report(StageEnriched, map[string]any{"matched": countPriced(enriched), "totalEstimatedCost": cost})

	status, message := ValidateAgainstStandards(analysis.TotalArea, projectType, enriched)

	raw := strings.TrimSpace(analysis.Notes)
	if raw == "" {
		raw = utils.StripCodeFence(text)
	}

	return e.finish(source, &model.EstimatorResult{
		Success:            true,
		ProjectType:        projectType,
		Rooms:              analysis.Rooms,
		TotalArea:          analysis.TotalArea,
		Materials:          enriched,
		TotalEstimatedCost: cost,
		Confidence:         analysis.Confidence,
		ParseStatus:        analysis.Status,
		ValidationStatus:   status,
		ValidationMessage:  message,
		RawAnalysis:        raw,
	}, start)
}

func (e *Estimator) finish(source string, result *model.EstimatorResult, start time.Time) *model.EstimatorResult {
	outcome := "success"
	if !result.Success {
		outcome = "failed"
	}
	metrics.EstimationsTotal.WithLabelValues(source, string(result.ProjectType), outcome).Inc()
	metrics.EstimationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	e.logger.Info("estimation finished",
		zap.String("source", source),
		zap.String("project_type", string(result.ProjectType)),
		zap.Bool("success", result.Success),
		zap.Float64("total_area", result.TotalArea),
		zap.Int("materials", len(result.Materials)),
		zap.Float64("total_cost", result.TotalEstimatedCost),
	)
	return result
}

// EnrichMaterialsWithProducts replaces synthetic names with the cheapest active
// catalog product matching the name's first word or pre-parenthesis prefix.
// Misses and lookup errors keep the synthetic line with no price.
func (e *Estimator) EnrichMaterialsWithProducts(ctx context.Context, materials []model.MaterialEstimate) []model.MaterialEstimate {
	enriched := make([]model.MaterialEstimate, len(materials))
	copy(enriched, materials)

	if e.catalog == nil {
		return enriched
	}

	for i := range enriched {
		m := &enriched[i]
		fragments := utils.ProductSearchFragments(m.ProductName)
		if len(fragments) == 0 {
			continue
		}

		products, err := e.catalog.FindActiveProductsByNameContains(ctx, fragments, 1)
		if err != nil {
			e.logger.Warn("catalog lookup failed",
				zap.String("material", m.ProductName),
				zap.Error(err),
			)
			continue
		}
		if len(products) == 0 {
			e.logger.Debug("no catalog match", zap.String("material", m.ProductName))
			continue
		}

		p := products[0]
		id, price := p.ID, p.Price
		m.ProductID = &id
		m.ProductName = p.Name
		m.Price = &price
		if p.Unit != "" {
			m.Unit = p.Unit
		}
	}

	return enriched
}

// TotalCost sums price × quantity over priced lines
func TotalCost(materials []model.MaterialEstimate) float64 {
	var total float64
	for _, m := range materials {
		if m.Price != nil {
			total += *m.Price * m.Quantity
		}
	}
	return total
}

func countPriced(materials []model.MaterialEstimate) int {
	n := 0
	for _, m := range materials {
		if m.Price != nil {
			n++
		}
	}
	return n
}

// ValidateAgainstStandards sanity-checks the estimate against typical
// residential norms so that a hallucinated scale is flagged.
func ValidateAgainstStandards(area float64, projectType model.ProjectType, materials []model.MaterialEstimate) (model.ValidationStatus, string) {
	if area <= 0 {
		return model.ValidationWarning, "Diện tích không hợp lệ. Vui lòng kiểm tra lại ảnh hoặc mô tả."
	}

	// Only the general norm is expressed in bags per m² of floor
	if projectType == model.ProjectGeneral {
		for _, m := range materials {
			if m.Code != model.MaterialCement {
				continue
			}
			ratio := m.Quantity / area
			if ratio < minCementBagsPerM2 || ratio > maxCementBagsPerM2 {
				return model.ValidationOutlier, "Khối lượng Xi măng bất thường so với diện tích. Vui lòng kiểm tra lại ảnh hoặc đơn vị đo."
			}
		}
	}

	if area > maxTypicalAreaM2 {
		return model.ValidationWarning, "Công trình diện tích lớn, kết cấu có thể phức tạp hơn ước tính sơ bộ."
	}

	return model.ValidationVerified, "Kết quả bóc tách phù hợp với định mức xây dựng dân dụng (TCVN)."
}

// decodeImagePayload strips an optional data URL prefix and decodes the base64 body
func decodeImagePayload(imageData string) ([]byte, string, error) {
	payload := strings.TrimSpace(imageData)
	mimeType := "image/jpeg"
	if m := dataURLPrefix.FindStringSubmatch(payload); m != nil {
		mimeType = m[1]
		payload = payload[len(m[0]):]
	}
	if payload == "" {
		return nil, "", errors.New("empty image payload")
	}

	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients drop the padding
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, mimeType, nil
		}
		return nil, "", fmt.Errorf("invalid base64 image: %w", err)
	}
	return image, mimeType, nil
}

// userFacingError maps a model call failure to the message shown to the user
func userFacingError(err error) string {
	switch {
	case errors.Is(err, ErrClientNotConfigured):
		return MsgNotConfigured
	case IsTransientError(err):
		return MsgServiceBusy
	default:
		return fmt.Sprintf("Lỗi phân tích AI: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
