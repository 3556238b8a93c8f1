package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScanStatus represents the outcome of a scan
type ScanStatus string

const (
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// ScanMode selects which upstream endpoint answers a scan
type ScanMode string

const (
	// ScanModeAnalysis asks a generative model for a free-text analysis
	ScanModeAnalysis ScanMode = "analysis"
	// ScanModeSentiment asks a sentiment classifier for a label and confidence
	ScanModeSentiment ScanMode = "sentiment"
)

// IsValid reports whether m is a known scan mode
func (m ScanMode) IsValid() bool {
	return m == ScanModeAnalysis || m == ScanModeSentiment
}

// ScanSource records where the product string came from
type ScanSource string

const (
	ScanSourceText  ScanSource = "text"
	ScanSourceImage ScanSource = "image"
)


// Scan represents a single product check against an inference endpoint
type Scan struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Product        string     `json:"product" gorm:"type:varchar(255);not null;index"`
	ProductKey     string     `json:"-" gorm:"type:varchar(255);not null;default:'';index"`
	Source         ScanSource `json:"source" gorm:"type:varchar(10);not null"`
	ImageName      string     `json:"image_name,omitempty" gorm:"type:varchar(255)"`
	ImageMIME      string     `json:"image_mime,omitempty" gorm:"type:varchar(50)"`
	Mode           ScanMode   `json:"mode" gorm:"type:varchar(20);not null"`
	Status         ScanStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Analysis       string     `json:"analysis,omitempty" gorm:"type:text"`
	Label          string     `json:"label,omitempty" gorm:"type:varchar(50)"`
	Confidence     float64    `json:"confidence" gorm:"type:decimal(5,4)"`
	EcoScore       *int       `json:"eco_score,omitempty"`
	Provider       string     `json:"provider" gorm:"type:varchar(50)"`
	Model          string     `json:"model,omitempty" gorm:"type:varchar(100)"`
	ErrorMessage   string     `json:"error_message,omitempty" gorm:"type:text"`
	UpstreamStatus int        `json:"upstream_status,omitempty" gorm:"default:0"`
	LatencyMs      int64      `json:"latency_ms" gorm:"default:0"`
	Cached         bool       `json:"cached" gorm:"default:false"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (Scan) TableName() string {
	return "scans"
}

// NewScan creates a new Scan for the given product
func NewScan(product string, source ScanSource, mode ScanMode) *Scan {
	return &Scan{
		ID:         uuid.New(),
		Product:    product,
		ProductKey: NormalizeProduct(product),
		Source:     source,
		Mode:       mode,
	}
}

// NormalizeProduct folds a product string for cache keys and leaderboard
// grouping: lower case with runs of whitespace collapsed.
func NormalizeProduct(product string) string {
	return strings.ToLower(strings.Join(strings.Fields(product), " "))
}

// Complete marks the scan as successful
func (s *Scan) Complete(provider, model string, latencyMs int64) {
	s.Status = ScanStatusCompleted
	s.Provider = provider
	s.Model = model
	s.LatencyMs = latencyMs
	s.ErrorMessage = ""
	s.UpstreamStatus = 0
}

// Fail marks the scan as failed. Any analysis or label is cleared so a failed
// scan never carries a result.
func (s *Scan) Fail(provider string, upstreamStatus int, message string, latencyMs int64) {
	s.Status = ScanStatusFailed
	s.Provider = provider
	s.UpstreamStatus = upstreamStatus
	s.ErrorMessage = message
	s.LatencyMs = latencyMs
	s.Analysis = ""
	s.Label = ""
	s.Confidence = 0
	s.EcoScore = nil
}

// IsCompleted returns true if the scan finished successfully
func (s *Scan) IsCompleted() bool {
	return s.Status == ScanStatusCompleted
}

// HasEcoScore returns true if a score could be derived for the scan
func (s *Scan) HasEcoScore() bool {
	return s.EcoScore != nil
}

// LeaderboardEntry aggregates completed scans of a single product
type LeaderboardEntry struct {
	Product       string    `json:"product"`
	BestScore     int       `json:"best_score"`
	AverageScore  float64   `json:"average_score"`
	ScanCount     int64     `json:"scan_count"`
	LastScannedAt time.Time `json:"last_scanned_at"`
}
