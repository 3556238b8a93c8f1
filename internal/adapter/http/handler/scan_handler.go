package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ressKim-io/EcoScan/api-service/internal/usecase"
)

// formOverhead is the room left for text fields next to the image part
const formOverhead = 1 << 20

// ScanHandler handles scan-related HTTP requests
type ScanHandler struct {
	scanUC         usecase.ScanUsecase
	maxUploadBytes int64
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanUC usecase.ScanUsecase, maxUploadBytes int64) *ScanHandler {
	return &ScanHandler{scanUC: scanUC, maxUploadBytes: maxUploadBytes}
}

// CreateScan handles POST /api/v1/scans. It accepts a JSON body or a
// multipart form with an optional image part.
func (h *ScanHandler) CreateScan(c *gin.Context) {
	input, err := bindScanInput(c, h.maxUploadBytes)
	if err != nil {
		handleBindError(c, err)
		return
	}

	output, err := h.scanUC.Scan(c.Request.Context(), input)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, output)
}

// GetScan handles GET /api/v1/scans/:id
func (h *ScanHandler) GetScan(c *gin.Context) {
	id, err := ExtractUUIDParam(c, "id")
	if err != nil {
		HandleInvalidUUID(c, "scan id")
		return
	}

	output, err := h.scanUC.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// ListScans handles GET /api/v1/scans
func (h *ScanHandler) ListScans(c *gin.Context) {
	p := ParsePagination(c)

	output, err := h.scanUC.History(c.Request.Context(), p.Limit, p.Offset)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// GetLeaderboard handles GET /api/v1/leaderboard
func (h *ScanHandler) GetLeaderboard(c *gin.Context) {
	output, err := h.scanUC.Leaderboard(c.Request.Context(), ParseLimit(c, 0))
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// bindScanInput reads the product name, mode and optional image from either
// a multipart form or a JSON body.
func bindScanInput(c *gin.Context, maxUploadBytes int64) (*usecase.ScanInput, error) {
	input := &usecase.ScanInput{RequestID: requestID(c)}

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+formOverhead)
		if err := c.ShouldBind(input); err != nil {
			return nil, err
		}
		// A typed name wins, so an attached image is neither read nor checked.
		if strings.TrimSpace(input.ProductName) != "" {
			return input, nil
		}

		fh, err := c.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return input, nil
			}
			return nil, err
		}

		upload, err := ReadImageUpload(fh, maxUploadBytes)
		if err != nil {
			return nil, err
		}
		input.ImageName = upload.Name
		input.ImageMIME = upload.MIME
	case gin.MIMEPOSTForm:
		if err := c.ShouldBind(input); err != nil {
			return nil, err
		}
	default:
		if err := c.ShouldBindJSON(input); err != nil {
			return nil, err
		}
	}

	return input, nil
}

func handleBindError(c *gin.Context, err error) {
	switch {
	case isTooLarge(err):
		respondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", ErrImageTooLarge.Error())
	case isUnsupported(err):
		respondError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", ErrUnsupportedImage.Error())
	default:
		HandleInvalidRequest(c, err.Error())
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.Is(err, ErrImageTooLarge) || errors.As(err, &maxErr)
}

func isUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedImage)
}
