package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// Default pagination values
const (
	DefaultLimit  = 10
	MaxLimit      = 100
	DefaultOffset = 0
)

// ParsePagination extracts and validates pagination parameters from the request.
// It returns validated PaginationParams with safe default values.
func ParsePagination(c *gin.Context) *PaginationParams {
	return &PaginationParams{
		Limit:  ParseLimit(c, DefaultLimit),
		Offset: parseOffset(c),
	}
}

// ParseLimit reads the limit query parameter, falling back to def when it
// is missing or not a positive integer.
func ParseLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

func parseOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(DefaultOffset)))
	if err != nil || offset < 0 {
		offset = DefaultOffset
	}
	return offset
}

// ExtractUUIDParam extracts and parses a UUID parameter from the URL path.
// Returns the parsed UUID or an error if the parameter is invalid.
func ExtractUUIDParam(c *gin.Context, param string) (uuid.UUID, error) {
	idStr := c.Param(param)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", param, err)
	}
	return id, nil
}

// Upload validation errors
var (
	ErrImageTooLarge      = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage   = errors.New("image must be a JPEG or PNG file")
	allowedImageMIMETypes = []string{"image/jpeg", "image/png"}
)

// ImageUpload is the part of an uploaded image the scan uses. The pixel
// content is only sniffed for its type.
type ImageUpload struct {
	Name string
	MIME string
}

// ReadImageUpload validates an uploaded file's size and detected content type
func ReadImageUpload(fh *multipart.FileHeader, maxBytes int64) (*ImageUpload, error) {
	if fh.Size > maxBytes {
		return nil, ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(io.LimitReader(f, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageMIMETypes...) {
		return nil, ErrUnsupportedImage
	}

	return &ImageUpload{
		Name: filepath.Base(fh.Filename),
		MIME: mtype.String(),
	}, nil
}
