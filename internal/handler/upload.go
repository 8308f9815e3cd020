package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/storage"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

var receiptExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".pdf": true}

// UploadHandler accepts receipt files for use as an expense attachmentUrl.
type UploadHandler struct {
	Store    storage.ObjectStore
	MaxBytes int64
}

func NewUploadHandler(store storage.ObjectStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{Store: store, MaxBytes: maxBytes}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.MaxBytes > 0 {
		// room for the multipart envelope
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			util.Fail(c, h.tooLarge())
			return
		}
		util.Fail(c, apperr.Validation("No file uploaded"))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !receiptExts[ext] {
		util.Fail(c, apperr.Validation("Only .jpg, .jpeg, .png and .pdf files are allowed"))
		return
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		util.Fail(c, h.tooLarge())
		return
	}

	src, err := fh.Open()
	if err != nil {
		util.Fail(c, apperr.Unexpected(fmt.Errorf("open upload: %w", err)))
		return
	}
	defer src.Close()

	url, err := h.Store.Put(c.Request.Context(), ext, src)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			util.Fail(c, h.tooLarge())
			return
		}
		util.Fail(c, apperr.Unexpected(fmt.Errorf("store upload: %w", err)))
		return
	}
	util.Success(c, http.StatusOK, gin.H{"url": url})
}

func (h *UploadHandler) tooLarge() error {
	return apperr.Validation(fmt.Sprintf("File exceeds the %d byte limit", h.MaxBytes))
}
