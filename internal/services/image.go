package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mask-mender/internal/logger"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"gocv.io/x/gocv"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// OpenExtensions are the extensions offered by the file-open dialog.
var OpenExtensions = []string{".jpg", ".png", ".bmp"}

// DefaultSaveExtension is appended to save targets without an extension.
const DefaultSaveExtension = ".png"

// ImageService handles image loading and saving
type ImageService struct {
	tracker     safe.MemoryTracker
	logger      logger.Logger
	jpegQuality int
}

// NewImageService creates a new image service
func NewImageService(tracker safe.MemoryTracker, log logger.Logger, jpegQuality int) *ImageService {
	return &ImageService{
		tracker:     tracker,
		logger:      log,
		jpegQuality: jpegQuality,
	}
}

// LoadURI loads an image from a dialog reader and closes it.
func (is *ImageService) LoadURI(ctx context.Context, reader fyne.URIReadCloser) (*models.ImageData, error) {
	defer reader.Close()

	uri := reader.URI()
	data, err := is.Load(ctx, reader, uri.Path())
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Load decodes an image from r with OpenCV. name is used for format
// detection fallback and logging.
func (is *ImageService) Load(ctx context.Context, r io.Reader, name string) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()

	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("image %s is empty", name)
	}

	original, decoder, err := is.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(name), err)
	}

	select {
	case <-ctx.Done():
		original.Close()
		return nil, ctx.Err()
	default:
	}

	img, err := conversion.MatToImage(original)
	if err != nil {
		original.Close()
		return nil, fmt.Errorf("failed to convert Mat to image: %w", err)
	}

	_, detected, _ := image.DecodeConfig(bytes.NewReader(raw))
	format := determineFormat(strings.ToLower(filepath.Ext(name)), detected)

	imageData := &models.ImageData{
		Image:    img,
		Mat:      original,
		Width:    original.Cols(),
		Height:   original.Rows(),
		Channels: original.Channels(),
		Format:   format,
		Source:   name,
		FileSize: int64(len(raw)),
		LoadTime: time.Now(),
	}

	is.logger.Info("ImageService", "image loaded", map[string]interface{}{
		"source":   filepath.Base(name),
		"width":    imageData.Width,
		"height":   imageData.Height,
		"format":   format,
		"decoder":  decoder,
		"mat_type": conversion.GetMatProperties(original).DataType,
		"bytes":    imageData.FileSize,
		"duration": time.Since(startTime).String(),
	})

	return imageData, nil
}

// decode uses OpenCV and falls back to the Go image codecs when OpenCV
// returns nothing.
func (is *ImageService) decode(raw []byte) (*safe.Mat, string, error) {
	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err == nil {
		if original, err := safe.Adopt(mat, is.tracker, "original"); err == nil {
			return original, "opencv", nil
		}
	}
	return is.decodeGo(raw)
}

func (is *ImageService) decodeGo(raw []byte) (*safe.Mat, string, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("unsupported image data: %w", err)
	}
	original, err := conversion.ImageToMat(img, is.tracker, "original")
	if err != nil {
		return nil, "", err
	}
	return original, "go", nil
}

// LoadFile loads an image from disk.
func (is *ImageService) LoadFile(ctx context.Context, path string) (*models.ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return is.Load(ctx, file, path)
}

// SaveFile writes imageData to path, appending DefaultSaveExtension when
// path has none. It returns the path written.
func (is *ImageService) SaveFile(ctx context.Context, path string, imageData *models.ImageData) (string, error) {
	if imageData == nil {
		return "", models.ErrNoResult
	}
	target := ResolveSavePath(path)

	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}

	if err := is.Save(ctx, file, imageData, FormatForPath(target)); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}
	return target, nil
}

// SaveURI writes imageData to a dialog writer, closing it. When the chosen
// name has no extension the image is written to the same path with
// DefaultSaveExtension appended instead. It returns the path written.
func (is *ImageService) SaveURI(ctx context.Context, writer fyne.URIWriteCloser, imageData *models.ImageData) (string, error) {
	uri := writer.URI()

	target, renamed := WithDefaultExtension(uri, DefaultSaveExtension)
	if !renamed {
		defer writer.Close()
		if err := is.Save(ctx, writer, imageData, formatFromExtension(uri.Extension())); err != nil {
			return "", err
		}
		return uri.Path(), nil
	}

	// The dialog already created the extensionless file; replace it.
	writer.Close()
	if err := storage.Delete(uri); err != nil {
		is.logger.Warning("ImageService", "could not remove extensionless file", map[string]interface{}{
			"path":  uri.Path(),
			"error": err.Error(),
		})
	}

	out, err := storage.Writer(target)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", target.Path(), err)
	}
	defer out.Close()

	if err := is.Save(ctx, out, imageData, formatFromExtension(target.Extension())); err != nil {
		return "", err
	}
	return target.Path(), nil
}

// Save encodes imageData to w. An empty or unknown format writes PNG.
func (is *ImageService) Save(ctx context.Context, w io.Writer, imageData *models.ImageData, format string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if imageData == nil || imageData.Image == nil {
		return models.ErrNoResult
	}

	saveFormat := strings.ToLower(format)
	if saveFormat == "" {
		saveFormat = "png"
	}

	is.logger.Debug("ImageService", "saving image", map[string]interface{}{
		"format": saveFormat,
		"width":  imageData.Width,
		"height": imageData.Height,
	})

	var err error
	switch saveFormat {
	case "jpeg", "jpg":
		err = jpeg.Encode(w, imageData.Image, &jpeg.Options{Quality: is.jpegQuality})
	case "bmp":
		err = bmp.Encode(w, imageData.Image)
	case "tiff", "tif":
		err = tiff.Encode(w, imageData.Image, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(w, imageData.Image)
	}

	if err != nil {
		is.logger.Error("ImageService", err, map[string]interface{}{
			"format": saveFormat,
		})
		return fmt.Errorf("failed to encode %s: %w", saveFormat, err)
	}
	return nil
}

// ResolveSavePath appends DefaultSaveExtension to a path without one.
func ResolveSavePath(path string) string {
	if filepath.Ext(path) == "" {
		return path + DefaultSaveExtension
	}
	return path
}

// WithDefaultExtension returns uri with ext appended when uri has no
// extension. renamed reports whether a new URI was produced.
func WithDefaultExtension(uri fyne.URI, ext string) (fyne.URI, bool) {
	if uri.Extension() != "" || uri.Scheme() != "file" {
		return uri, false
	}
	return storage.NewFileURI(uri.Path() + ext), true
}

// FormatForPath picks the encoder for a destination path.
func FormatForPath(path string) string {
	return formatFromExtension(filepath.Ext(path))
}

func formatFromExtension(ext string) string {
	return determineFormat(strings.ToLower(ext), "png")
}

// determineFormat determines the appropriate format based on extension and detected format
func determineFormat(extension, detectedFormat string) string {
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".tiff", ".tif":
		return "tiff"
	default:
		if detectedFormat != "" {
			return detectedFormat
		}
		return "png"
	}
}
