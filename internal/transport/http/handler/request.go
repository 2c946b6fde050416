package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/campus-marketplace/internal/transport/http/middleware"
	"github.com/ErlanBelekov/campus-marketplace/internal/usecase"
)

// MaxImageBytes caps a single uploaded image.
const MaxImageBytes = 10 << 20

// price is a non-negative decimal with at most two fraction digits.
var priceRe = regexp.MustCompile(`^[0-9]{1,10}(\.[0-9]{1,2})?$`)

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return 0, false
	}
	return id, true
}

// currentUser returns the id set by middleware.Auth.
func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

// formImage reads an optional multipart file. A missing field yields nil.
func formImage(c *gin.Context, field string) (*usecase.Upload, error) {
	fh, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*usecase.Upload, error) {
	if fh.Size > MaxImageBytes {
		return nil, fmt.Errorf("image is %d bytes, limit is %d", fh.Size, MaxImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return &usecase.Upload{Data: data, Filename: fh.Filename}, nil
}

func writeImage(c *gin.Context, data []byte) {
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
