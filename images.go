package inkwell

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes a featured image, resizes it to maxImageWidth
// if wider, and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (string, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("encode jpeg: %w", err)
	}

	ext := filepath.Ext(originalName)
	base := Slugify(strings.TrimSuffix(originalName, ext))
	if base == "" {
		base = "image"
	}
	return base + ".jpg", buf.Bytes(), nil
}

// ensureUniqueFilename appends a counter while the filename collides
// with an existing upload.
func ensureUniqueFilename(dir, filename string) string {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

// handleImageUpload accepts a featured image from the post form,
// processes it, and returns the stored filename for the form to
// reference. Authors and admins only.
func (a *App) handleImageUpload(c echo.Context) error {
	user, ok := a.currentUser(c)
	if !ok {
		return redirectMsg(c, "/login/", "Please log in to continue.")
	}
	if !user.IsAuthor() {
		return redirectMsg(c, "/", noPermissionMsg)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	filename, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	filename = ensureUniqueFilename(dir, filename)

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"filename": filename,
		"url":      "/public/" + uploadsSubdir + "/" + filename,
	})
}
