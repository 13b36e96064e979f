package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// uploadFiles stores every file posted under the given form fields and
// returns their URLs in order. Non-multipart requests carry no files.
func (h *Handler) uploadFiles(c *gin.Context, fields ...string) ([]string, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	var urls []string
	for _, field := range fields {
		for _, fh := range form.File[field] {
			url, err := h.store(c, fh)
			if err != nil {
				return nil, err
			}
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// uploadFile is uploadFiles for a single image field.
func (h *Handler) uploadFile(c *gin.Context, field string) (string, error) {
	urls, err := h.uploadFiles(c, field)
	if err != nil || len(urls) == 0 {
		return "", err
	}
	return urls[0], nil
}

func (h *Handler) store(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()
	return h.Uploader.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
}
