package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mask-mender/internal/logger"
	"mask-mender/internal/masking"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gray = color.NRGBA{R: 90, G: 110, B: 130, A: 255}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func photo(box image.Rectangle, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			c := gray
			if image.Pt(x, y).In(box) {
				c = fill
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	return img
}

func assertNearGray(t *testing.T, img image.Image, x, y int) {
	t.Helper()
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.InDelta(t, int(gray.R), int(c.R), 12)
	assert.InDelta(t, int(gray.G), int(c.G), 12)
	assert.InDelta(t, int(gray.B), int(c.B), 12)
}

func TestYellowCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, photo(image.Rect(20, 10, 30, 20), color.NRGBA{R: 255, G: 230, A: 255}))

	out, err := execute(t, "yellow", "--src", src, "--dst", filepath.Join(dir, "out"), "--algorithm", "ns")
	require.NoError(t, err)

	dst := filepath.Join(dir, "out.png")
	assert.Equal(t, dst, out)
	assertNearGray(t, readPNG(t, dst), 25, 15)
}

func TestYellowCommandRequireMask(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, photo(image.Rectangle{}, gray))

	_, err := execute(t, "yellow", "--src", src, "--dst", filepath.Join(dir, "out.png"), "--require-mask")
	assert.ErrorIs(t, err, masking.ErrEmptyMask)
	assert.NoFileExists(t, filepath.Join(dir, "out.png"))

	_, err = execute(t, "yellow", "--src", src, "--dst", filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out.png"))
}

func TestMaskCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	maskPath := filepath.Join(dir, "mask.png")
	red := color.NRGBA{R: 200, A: 255}
	writePNG(t, src, photo(image.Rect(5, 5, 15, 15), red))

	mask := image.NewGray(image.Rect(0, 0, 60, 40))
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	writePNG(t, maskPath, mask)

	dst := filepath.Join(dir, "out.bmp")
	out, err := execute(t, "mask", "--src", src, "--mask", maskPath, "--dst", dst)
	require.NoError(t, err)
	assert.Equal(t, dst, out)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMaskCommandSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	maskPath := filepath.Join(dir, "mask.png")
	writePNG(t, src, photo(image.Rectangle{}, gray))
	writePNG(t, maskPath, image.NewGray(image.Rect(0, 0, 10, 10)))

	_, err := execute(t, "mask", "--src", src, "--mask", maskPath, "--dst", filepath.Join(dir, "out.png"))
	assert.Error(t, err)
}

func TestCommandsRequireFlags(t *testing.T) {
	_, err := execute(t, "yellow", "--src", "a.png")
	assert.Error(t, err)

	_, err = execute(t, "mask", "--src", "a.png", "--dst", "b.png")
	assert.Error(t, err)
}

func TestUnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, photo(image.Rectangle{}, gray))

	_, err := execute(t, "yellow", "--src", src, "--dst", filepath.Join(dir, "o.png"), "--algorithm", "fmm")
	assert.Error(t, err)
}

func TestRunReportsFailureThroughLogger(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "bogus"})

	var logs bytes.Buffer
	code := run(context.Background(), root, logger.NewZerolog(&logs, zerolog.ErrorLevel))

	assert.Equal(t, 1, code)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "inpaint-cli", entry["component"])
	assert.Contains(t, entry["error"], "bogus")
}

func TestRunSucceeds(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--help"})

	var logs bytes.Buffer
	assert.Zero(t, run(context.Background(), root, logger.NewZerolog(&logs, zerolog.ErrorLevel)))
	assert.Empty(t, logs.String())
}
