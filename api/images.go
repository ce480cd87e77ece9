package api

import (
	"fmt"
	"io"
	"strings"

	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// maxImageSize upload limit in bytes
const maxImageSize = 10 << 20

// ImageHandler icon and avatar cache
type ImageHandler struct {
	images *service.ImageService
}

// NewImageHandler creates the image handler
func NewImageHandler(images *service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// UploadResponse key of the stored image
type UploadResponse struct {
	ImageKey string `json:"imageKey"`
}

// Upload stores an image
// @Summary Upload image
// @Description Multipart field "file" or the raw request body. The key is {category}_{epochMillis}.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param category query string false "key prefix" default(image)
// @Param filename query string false "original file name for raw uploads"
// @Param file formData file false "image file"
// @Success 200 {object} Response{data=UploadResponse}
// @Failure 400 {object} Response
// @Router /api/images [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	filename, data, err := readUpload(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	key, err := h.images.Upload(c.Query("category"), filename, data)
	if err != nil {
		Fail(c, err, "failed to store image")
		return
	}
	Success(c, UploadResponse{ImageKey: key})
}

func readUpload(c *gin.Context) (string, []byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		header, err := c.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("missing file: %w", err)
		}
		if header.Size > maxImageSize {
			return "", nil, fmt.Errorf("file larger than %d bytes", maxImageSize)
		}
		f, err := header.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return header.Filename, data, err
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageSize+1))
	if err != nil {
		return "", nil, err
	}
	if len(data) > maxImageSize {
		return "", nil, fmt.Errorf("file larger than %d bytes", maxImageSize)
	}
	return c.Query("filename"), data, nil
}

// Get returns the image as a data URI
// @Summary Get image
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param key path string true "image key"
// @Success 200 {object} Response{data=string} "data:<mime>;base64,..."
// @Failure 404 {object} Response
// @Router /api/images/{key} [get]
func (h *ImageHandler) Get(c *gin.Context) {
	img, err := h.images.Get(c.Param("key"))
	if err != nil {
		Fail(c, err, "failed to load image")
		return
	}
	if img == nil {
		NotFound(c, "image not found")
		return
	}
	Success(c, service.DataURI(img))
}

// Delete removes an image; rows naming the key are left untouched
// @Summary Delete image
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param key path string true "image key"
// @Success 200 {object} Response{data=DeleteResponse}
// @Router /api/images/{key} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	n, err := h.images.Delete(c.Param("key"))
	if err != nil {
		Fail(c, err, "failed to delete image")
		return
	}
	Success(c, DeleteResponse{DeletedCount: n})
}
