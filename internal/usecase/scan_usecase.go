package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// Error definitions for scan usecase
var (
	ErrScanNotFound        = errors.New("scan not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrMissingInput        = service.ErrMissingInput
	ErrInvalidMode         = errors.New("invalid scan mode")
	ErrUpstream            = errors.New("inference endpoint failed")
	ErrProviderUnavailable = errors.New("no provider configured for scan mode")
)

const maxPageSize = 100

// ScanInput represents the input for a scan
type ScanInput struct {
	ProductName string `json:"product_name" form:"product_name"`
	Mode        string `json:"mode" form:"mode"`
	ImageName   string `json:"-" form:"-"`
	ImageMIME   string `json:"-" form:"-"`
	RequestID   string `json:"-" form:"-"`
}

// ScanOutput represents the output for scan operations
type ScanOutput struct {
	ScanID         uuid.UUID `json:"scan_id"`
	Product        string    `json:"product"`
	Source         string    `json:"source"`
	ImageName      string    `json:"image_name,omitempty"`
	Mode           string    `json:"mode"`
	Status         string    `json:"status"`
	Analysis       string    `json:"analysis,omitempty"`
	Label          string    `json:"label,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	EcoScore       *int      `json:"eco_score,omitempty"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model,omitempty"`
	Cached         bool      `json:"cached"`
	LatencyMs      int64     `json:"latency_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	UpstreamStatus int       `json:"upstream_status,omitempty"`
	CreatedAt      string    `json:"created_at"`
}

// ScanListOutput represents paginated scan history
type ScanListOutput struct {
	Scans   []*ScanOutput `json:"scans"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// LeaderboardOutput represents the ranked products
type LeaderboardOutput struct {
	Entries []*entity.LeaderboardEntry `json:"entries"`
	Limit   int                        `json:"limit"`
}

// ScanUsecase defines the interface for scan business logic
type ScanUsecase interface {
	Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ScanOutput, error)
	History(ctx context.Context, limit, offset int) (*ScanListOutput, error)
	Leaderboard(ctx context.Context, limit int) (*LeaderboardOutput, error)
}

// Options carries the optional collaborators and defaults of the scan usecase
type Options struct {
	Cache            repository.ScanCache
	Metrics          *Metrics
	Logger           *zap.Logger
	DefaultMode      entity.ScanMode
	HistoryLimit     int
	LeaderboardLimit int
}

type scanUsecase struct {
	scanRepo   repository.ScanRepository
	generator  service.Generator
	classifier service.Classifier
	cache      repository.ScanCache
	metrics    *Metrics
	logger     *zap.Logger

	defaultMode      entity.ScanMode
	historyLimit     int
	leaderboardLimit int
}

// NewScanUsecase creates a new scan usecase. Either upstream may be nil, in
// which case scans in its mode fail with ErrProviderUnavailable.
func NewScanUsecase(scanRepo repository.ScanRepository, generator service.Generator, classifier service.Classifier, opts Options) ScanUsecase {
	u := &scanUsecase{
		scanRepo:         scanRepo,
		generator:        generator,
		classifier:       classifier,
		cache:            opts.Cache,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
		defaultMode:      opts.DefaultMode,
		historyLimit:     opts.HistoryLimit,
		leaderboardLimit: opts.LeaderboardLimit,
	}
	if u.logger == nil {
		u.logger = zap.NewNop()
	}
	if !u.defaultMode.IsValid() {
		u.defaultMode = entity.ScanModeAnalysis
	}
	if u.historyLimit <= 0 {
		u.historyLimit = 10
	}
	if u.leaderboardLimit <= 0 {
		u.leaderboardLimit = 5
	}
	return u
}

func (u *scanUsecase) Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error) {
	if input == nil {
		return nil, ErrInvalidRequest
	}

	mode := u.defaultMode
	if input.Mode != "" {
		mode = entity.ScanMode(input.Mode)
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, input.Mode)
	}

	product, fromImage, err := service.ResolveProduct(input.ProductName, input.ImageName)
	if err != nil {
		return nil, err
	}

	source := entity.ScanSourceText
	if fromImage {
		source = entity.ScanSourceImage
	}

	if (mode == entity.ScanModeAnalysis && u.generator == nil) || (mode == entity.ScanModeSentiment && u.classifier == nil) {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, mode)
	}

	scan := entity.NewScan(product, source, mode)
	scan.ImageName = input.ImageName
	scan.ImageMIME = input.ImageMIME

	// Persist after the caller goes away so a finished upstream call is not lost.
	storeCtx := context.WithoutCancel(ctx)

	if hit := u.lookupCache(ctx, mode, product); hit != nil {
		scan.Analysis = hit.Analysis
		scan.Label = hit.Label
		scan.Confidence = hit.Confidence
		scan.EcoScore = hit.EcoScore
		scan.Cached = true
		scan.Complete(hit.Provider, hit.Model, 0)

		if err := u.scanRepo.Create(storeCtx, scan); err != nil {
			return nil, err
		}
		u.metrics.observeScan(string(mode), string(scan.Status), true)
		u.logger.Info("scan served from cache",
			zap.String("scan_id", scan.ID.String()),
			zap.String("product", product),
			zap.String("mode", string(mode)),
		)
		return toScanOutput(scan), nil
	}

	provider, callErr := u.callUpstream(ctx, scan, input.RequestID)

	if err := u.scanRepo.Create(storeCtx, scan); err != nil {
		return nil, err
	}
	u.metrics.observeScan(string(mode), string(scan.Status), false)

	if callErr != nil {
		u.logger.Warn("scan failed",
			zap.String("scan_id", scan.ID.String()),
			zap.String("product", product),
			zap.String("mode", string(mode)),
			zap.String("provider", provider),
			zap.Int("upstream_status", scan.UpstreamStatus),
			zap.Error(callErr),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, callErr)
	}

	u.logger.Info("scan completed",
		zap.String("scan_id", scan.ID.String()),
		zap.String("product", product),
		zap.String("mode", string(mode)),
		zap.String("provider", provider),
		zap.Int64("latency_ms", scan.LatencyMs),
	)

	if u.cache != nil {
		if err := u.cache.Set(ctx, scan); err != nil {
			u.logger.Warn("failed to cache scan result", zap.Error(err))
		}
	}

	return toScanOutput(scan), nil
}

// callUpstream makes exactly one call to the endpoint serving scan.Mode and
// completes or fails the scan accordingly.
func (u *scanUsecase) callUpstream(ctx context.Context, scan *entity.Scan, requestID string) (string, error) {
	var provider string
	start := time.Now()

	var err error
	switch scan.Mode {
	case entity.ScanModeSentiment:
		provider = u.classifier.Name()
		var result *service.ClassificationResult
		result, err = u.classifier.Classify(ctx, scan.Product, requestID)
		if err == nil {
			scan.Label = result.Label
			scan.Confidence = result.Confidence
			score := service.ScoreFromSentiment(result.Label, result.Confidence)
			scan.EcoScore = &score
			scan.Complete(provider, result.Model, time.Since(start).Milliseconds())
		}
	default:
		provider = u.generator.Name()
		var gen *service.Generation
		gen, err = u.generator.Generate(ctx, service.BuildPrompt(scan.Product))
		if err == nil {
			scan.Analysis = gen.Text
			if score, ok := service.ExtractEcoScore(gen.Text); ok {
				scan.EcoScore = &score
			}
			scan.Complete(provider, gen.Model, time.Since(start).Milliseconds())
		}
	}

	elapsed := time.Since(start)
	u.metrics.observeUpstream(provider, elapsed)

	if err != nil {
		status := 0
		if upErr, ok := service.AsUpstreamError(err); ok {
			status = upErr.StatusCode
		}
		scan.Fail(provider, status, service.FailureMessage(provider, err), elapsed.Milliseconds())
	}
	return provider, err
}

func (u *scanUsecase) lookupCache(ctx context.Context, mode entity.ScanMode, product string) *entity.Scan {
	if u.cache == nil {
		return nil
	}
	hit, err := u.cache.Get(ctx, mode, product)
	if err != nil {
		u.logger.Warn("failed to read scan cache", zap.Error(err))
		return nil
	}
	return hit
}

func (u *scanUsecase) GetByID(ctx context.Context, id uuid.UUID) (*ScanOutput, error) {
	scan, err := u.scanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scan == nil {
		return nil, ErrScanNotFound
	}

	return toScanOutput(scan), nil
}

func (u *scanUsecase) History(ctx context.Context, limit, offset int) (*ScanListOutput, error) {
	if limit <= 0 {
		limit = u.historyLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	scans, total, err := u.scanRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	outputs := make([]*ScanOutput, len(scans))
	for i, s := range scans {
		outputs[i] = toScanOutput(s)
	}

	return &ScanListOutput{
		Scans:   outputs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}, nil
}

func (u *scanUsecase) Leaderboard(ctx context.Context, limit int) (*LeaderboardOutput, error) {
	if limit <= 0 {
		limit = u.leaderboardLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	entries, err := u.scanRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*entity.LeaderboardEntry{}
	}

	return &LeaderboardOutput{Entries: entries, Limit: limit}, nil
}

func toScanOutput(s *entity.Scan) *ScanOutput {
	return &ScanOutput{
		ScanID:         s.ID,
		Product:        s.Product,
		Source:         string(s.Source),
		ImageName:      s.ImageName,
		Mode:           string(s.Mode),
		Status:         string(s.Status),
		Analysis:       s.Analysis,
		Label:          s.Label,
		Confidence:     s.Confidence,
		EcoScore:       s.EcoScore,
		Provider:       s.Provider,
		Model:          s.Model,
		Cached:         s.Cached,
		LatencyMs:      s.LatencyMs,
		ErrorMessage:   s.ErrorMessage,
		UpstreamStatus: s.UpstreamStatus,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
