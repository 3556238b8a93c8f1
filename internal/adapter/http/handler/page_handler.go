package handler

import (
	"embed"
	"html/template"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// Alert levels rendered on the page
const (
	AlertWarning = "warning"
	AlertError   = "error"
)

// Alert is the single error block shown instead of a result
type Alert struct {
	Level   string
	Message string
}

// ResultView is the single success block shown after a scan
type ResultView struct {
	Product      string
	Label        string
	Confidence   float64
	EcoScore     *int
	AnalysisHTML template.HTML
	Cached       bool
}

// PageData feeds the index template. At most one of Result and Alert is set.
type PageData struct {
	ProductName string
	Mode        string
	Result      *ResultView
	Alert       *Alert
	History     []*usecase.ScanOutput
	Leaderboard []*entity.LeaderboardEntry
}

// PageHandler serves the HTML scan form
type PageHandler struct {
	scanUC         usecase.ScanUsecase
	maxUploadBytes int64
	defaultMode    string
	tmpl           *template.Template
	policy         *bluemonday.Policy
}

// NewPageHandler parses the embedded templates
func NewPageHandler(scanUC usecase.ScanUsecase, maxUploadBytes int64, defaultMode string) (*PageHandler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"deref":   func(v *int) int { return *v },
		"percent": func(f float64) int { return int(math.Round(f * 100)) },
		"inc":     func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		scanUC:         scanUC,
		maxUploadBytes: maxUploadBytes,
		defaultMode:    defaultMode,
		tmpl:           tmpl,
		policy:         bluemonday.UGCPolicy(),
	}, nil
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, &PageData{Mode: h.defaultMode})
}

// Scan handles POST /scan
func (h *PageHandler) Scan(c *gin.Context) {
	data := &PageData{Mode: h.defaultMode}

	input, err := bindScanInput(c, h.maxUploadBytes)
	if err != nil {
		status, alert := bindErrorAlert(err)
		data.Alert = alert
		h.render(c, status, data)
		return
	}
	data.ProductName = input.ProductName
	if input.Mode != "" {
		data.Mode = input.Mode
	}

	output, err := h.scanUC.Scan(c.Request.Context(), input)
	if err != nil {
		errResp := MapUsecaseError(err)
		level := AlertError
		if errResp.StatusCode < http.StatusInternalServerError {
			level = AlertWarning
		} else if errResp.StatusCode != http.StatusBadGateway {
			_ = c.Error(err)
		}
		data.Alert = &Alert{Level: level, Message: errResp.Message}
		h.render(c, errResp.StatusCode, data)
		return
	}

	data.Result = h.resultView(output)
	h.render(c, http.StatusOK, data)
}

func (h *PageHandler) resultView(output *usecase.ScanOutput) *ResultView {
	view := &ResultView{
		Product:    output.Product,
		Label:      output.Label,
		Confidence: output.Confidence,
		EcoScore:   output.EcoScore,
		Cached:     output.Cached,
	}
	if output.Analysis != "" {
		view.AnalysisHTML = h.renderMarkdown(output.Analysis)
	}
	return view
}

// renderMarkdown turns model output into sanitised HTML
func (h *PageHandler) renderMarkdown(text string) template.HTML {
	unsafe := blackfriday.Run([]byte(text))
	return template.HTML(h.policy.SanitizeBytes(unsafe))
}

func (h *PageHandler) render(c *gin.Context, status int, data *PageData) {
	ctx := c.Request.Context()

	if history, err := h.scanUC.History(ctx, 0, 0); err != nil {
		_ = c.Error(err)
	} else {
		data.History = history.Scans
	}

	if board, err := h.scanUC.Leaderboard(ctx, 0); err != nil {
		_ = c.Error(err)
	} else {
		data.Leaderboard = board.Entries
	}

	c.Render(status, render.HTML{Template: h.tmpl, Name: "index.html", Data: data})
}

func bindErrorAlert(err error) (int, *Alert) {
	switch {
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge, &Alert{Level: AlertWarning, Message: ErrImageTooLarge.Error()}
	case isUnsupported(err):
		return http.StatusUnsupportedMediaType, &Alert{Level: AlertWarning, Message: ErrUnsupportedImage.Error()}
	default:
		return http.StatusBadRequest, &Alert{Level: AlertWarning, Message: "could not read the submitted form"}
	}
}
