package models

import (
	"errors"
	"image"
	"sync"
	"time"

	"mask-mender/internal/opencv/safe"

	"github.com/google/uuid"
)

var (
	ErrNoImage  = errors.New("no image loaded")
	ErrNoResult = errors.New("no inpainted result available")
)

// ImageData represents a decoded bitmap with its OpenCV representation.
type ImageData struct {
	ID       string
	Image    image.Image
	Mat      *safe.Mat
	Width    int
	Height   int
	Channels int
	Format   string
	Source   string
	FileSize int64
	LoadTime time.Time
}

// Close releases the Mat. Safe on nil.
func (d *ImageData) Close() {
	if d != nil && d.Mat != nil {
		d.Mat.Close()
	}
}

// InpaintRecord describes one completed inpainting run.
type InpaintRecord struct {
	ID           string
	Algorithm    string
	Radius       float32
	MaskedPixels int
	Duration     time.Duration
	CompletedAt  time.Time
}

// NewInpaintRecord stamps a record with a fresh identifier.
func NewInpaintRecord(algorithm string, radius float32, maskedPixels int, duration time.Duration) InpaintRecord {
	return InpaintRecord{
		ID:           uuid.NewString(),
		Algorithm:    algorithm,
		Radius:       radius,
		MaskedPixels: maskedPixels,
		Duration:     duration,
		CompletedAt:  time.Now(),
	}
}

// Workspace is the single in-memory document of a window: the loaded
// original, the current mask and the latest inpainted result. It owns
// every Mat it holds.
type Workspace struct {
	mu         sync.RWMutex
	original   *ImageData
	mask       *safe.Mat
	result     *ImageData
	history    []InpaintRecord
	maxHistory int
}

func NewWorkspace() *Workspace {
	return &Workspace{
		history:    make([]InpaintRecord, 0),
		maxHistory: 10,
	}
}

// Load replaces the original and mask and drops any previous result.
func (w *Workspace) Load(original *ImageData, mask *safe.Mat) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.original.Close()
	if w.mask != nil {
		w.mask.Close()
	}
	w.result.Close()

	if original != nil && original.ID == "" {
		original.ID = uuid.NewString()
	}
	w.original = original
	w.mask = mask
	w.result = nil
}

func (w *Workspace) Original() *ImageData {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.original
}

func (w *Workspace) Mask() *safe.Mat {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mask
}

func (w *Workspace) Result() *ImageData {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.result
}

func (w *Workspace) HasImage() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.original != nil
}

func (w *Workspace) HasResult() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.result != nil
}

// SetMask swaps in a new mask, closing the previous one.
func (w *Workspace) SetMask(mask *safe.Mat) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.original == nil {
		return ErrNoImage
	}
	if w.mask != nil && w.mask != mask {
		w.mask.Close()
	}
	w.mask = mask
	return nil
}

// SetResult stores the latest result and appends its record to the bounded
// history.
func (w *Workspace) SetResult(result *ImageData, record InpaintRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.original == nil {
		return ErrNoImage
	}
	if w.result != result {
		w.result.Close()
	}
	if result != nil && result.ID == "" {
		result.ID = record.ID
	}
	w.result = result

	w.history = append(w.history, record)
	if len(w.history) > w.maxHistory {
		w.history = w.history[len(w.history)-w.maxHistory:]
	}
	return nil
}

// History returns completed runs, oldest first.
func (w *Workspace) History() []InpaintRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()

	history := make([]InpaintRecord, len(w.history))
	copy(history, w.history)
	return history
}

// Reset releases every Mat and forgets the history.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.original.Close()
	w.result.Close()
	if w.mask != nil {
		w.mask.Close()
	}
	w.original = nil
	w.result = nil
	w.mask = nil
	w.history = w.history[:0]
}

// Shutdown releases all resources
func (w *Workspace) Shutdown() {
	w.Reset()
}
