package cli_test

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/torus-io/assetpipe/pkg/cli"
)

func writeImage(t *testing.T, path string, encode func(f *os.File, img image.Image) error) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	gt.NoError(t, err)
	gt.NoError(t, encode(f, img))
	gt.NoError(t, f.Close())
}

func TestRunConvertAndRename(t *testing.T) {
	ctx := context.Background()
	outputDir := t.TempDir()
	sku := filepath.Join(outputDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku, 0755))

	writeImage(t, filepath.Join(sku, "a.jpg"), func(f *os.File, img image.Image) error {
		return jpeg.Encode(f, img, nil)
	})
	writeImage(t, filepath.Join(sku, "b.png"), func(f *os.File, img image.Image) error {
		return png.Encode(f, img)
	})

	gt.NoError(t, cli.Run(ctx, []string{"assetpipe", "convert", "--photos-dir", outputDir}))

	_, err := os.Stat(filepath.Join(sku, "b.jpg"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(sku, "b.png"))
	gt.Error(t, err)

	gt.NoError(t, cli.Run(ctx, []string{"assetpipe", "rename", "--photos-dir", outputDir}))

	for _, name := range []string{"1.jpg", "2.jpg"} {
		_, err := os.Stat(filepath.Join(sku, name))
		gt.NoError(t, err)
	}
}
