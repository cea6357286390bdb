package handlers

import (
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	_ "image/gif"
)

const (
	maxUploadBytes = 5 << 20
	maxImageWidth  = 800
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadImage accepts a multipart "image" file, shrinks wide images and stores
// the result under the uploads directory with a random name. The response
// carries the public URL path to store on the owning document.
func UploadImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /upload"
		defer handlePanic(c, route)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "image file is required")
			return
		}
		if fileHeader.Size > maxUploadBytes {
			respondWithError(c, http.StatusRequestEntityTooLarge, route, "image exceeds 5MB")
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExtensions[ext] {
			respondWithError(c, http.StatusBadRequest, route, "unsupported image type")
			return
		}

		uploadsDir := filepath.Join(uploadsRoot, "uploads")
		if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not prepare storage")
			return
		}

		name := uuid.New().String() + ext
		dest := filepath.Join(uploadsDir, name)

		src, err := fileHeader.Open()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "could not read image")
			return
		}
		defer src.Close()

		// webp is stored as received; the others are decoded so oversized
		// images can be scaled down before hitting disk.
		if ext == ".webp" {
			out, err := os.Create(dest)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "could not store image")
				return
			}
			defer out.Close()
			if _, err := out.ReadFrom(src); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "could not store image")
				return
			}
			c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + name})
			return
		}

		img, format, err := image.Decode(src)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid image data")
			return
		}

		if img.Bounds().Dx() > maxImageWidth {
			img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
		}

		out, err := os.Create(dest)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not store image")
			return
		}
		defer out.Close()

		switch format {
		case "png":
			err = png.Encode(out, img)
		default:
			err = jpeg.Encode(out, img, &jpeg.Options{Quality: 85})
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not encode image")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": "/uploads/" + name})
	}
}
