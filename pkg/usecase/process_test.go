package usecase_test

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/torus-io/assetpipe/pkg/usecase"
)

func writeGIF(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{
		color.White, color.Black,
	})
	f, err := os.Create(path)
	gt.NoError(t, err)
	gt.NoError(t, gif.Encode(f, img, nil))
	gt.NoError(t, f.Close())
}

func writeJPEG(t *testing.T, path string, content byte) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: content, G: content, B: content, A: 255})
		}
	}
	f, err := os.Create(path)
	gt.NoError(t, err)
	gt.NoError(t, jpeg.Encode(f, img, nil))
	gt.NoError(t, f.Close())
}

func TestConvertAll(t *testing.T) {
	ctx := context.Background()
	outputDir := t.TempDir()

	sku1 := filepath.Join(outputDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku1, 0755))
	writePNG(t, filepath.Join(sku1, "photo.png"), 32, 32)
	writeJPEG(t, filepath.Join(sku1, "photo.jpg"), 128)
	gt.NoError(t, os.WriteFile(filepath.Join(sku1, "notes.txt"), []byte("keep"), 0644))

	sku2 := filepath.Join(outputDir, "SKU-002")
	gt.NoError(t, os.MkdirAll(sku2, 0755))
	writeGIF(t, filepath.Join(sku2, "anim.gif"), 32, 32)

	sku3 := filepath.Join(outputDir, "SKU-003")
	gt.NoError(t, os.MkdirAll(sku3, 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(sku3, "bad.png"), []byte("not an image"), 0644))

	processor := usecase.NewProcessor()
	summary, err := processor.ConvertAll(ctx, outputDir)
	gt.NoError(t, err)

	gt.Number(t, summary.Converted).Equal(2)
	gt.Number(t, summary.SKUsProcessed).Equal(2)
	gt.Number(t, len(summary.NonJPEGFiles)).Equal(3)
	gt.Number(t, len(summary.Errors)).Equal(1)
	gt.Value(t, summary.Errors[0].SKU).Equal("SKU-003")

	// photo.jpg already exists, so the converted PNG lands beside it
	_, err = os.Stat(filepath.Join(sku1, "photo_1.jpg"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(sku1, "photo.png"))
	gt.Error(t, err)

	f, err := os.Open(filepath.Join(sku1, "photo_1.jpg"))
	gt.NoError(t, err)
	defer f.Close()
	_, err = jpeg.Decode(f)
	gt.NoError(t, err)

	_, err = os.Stat(filepath.Join(sku2, "anim.jpg"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(sku2, "anim.gif"))
	gt.Error(t, err)

	// Failed conversions leave the original in place
	_, err = os.Stat(filepath.Join(sku3, "bad.png"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(sku1, "notes.txt"))
	gt.NoError(t, err)
}

func TestRenameAll(t *testing.T) {
	ctx := context.Background()
	outputDir := t.TempDir()

	sku := filepath.Join(outputDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku, 0755))
	writeJPEG(t, filepath.Join(sku, "charlie.jpg"), 30)
	writeJPEG(t, filepath.Join(sku, "alpha.jpg"), 10)
	writeJPEG(t, filepath.Join(sku, "bravo.jpeg"), 20)

	alpha, err := os.ReadFile(filepath.Join(sku, "alpha.jpg"))
	gt.NoError(t, err)

	processor := usecase.NewProcessor()
	summary, err := processor.RenameAll(ctx, outputDir)
	gt.NoError(t, err)

	gt.Number(t, summary.Renamed).Equal(3)
	gt.Number(t, summary.SKUsProcessed).Equal(1)
	gt.Number(t, len(summary.Errors)).Equal(0)

	// Lexicographic order of the original names decides the sequence
	first, err := os.ReadFile(filepath.Join(sku, "1.jpg"))
	gt.NoError(t, err)
	gt.Value(t, string(first)).Equal(string(alpha))

	for _, name := range []string{"2.jpg", "3.jpg"} {
		_, err := os.Stat(filepath.Join(sku, name))
		gt.NoError(t, err)
	}
	_, err = os.Stat(filepath.Join(sku, "alpha.jpg"))
	gt.Error(t, err)
}

func TestRenameAllRefusesWithNonJPEG(t *testing.T) {
	ctx := context.Background()
	outputDir := t.TempDir()

	sku := filepath.Join(outputDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku, 0755))
	writeJPEG(t, filepath.Join(sku, "a.jpg"), 10)
	writePNG(t, filepath.Join(sku, "b.png"), 32, 32)

	processor := usecase.NewProcessor()
	summary, err := processor.RenameAll(ctx, outputDir)
	gt.NoError(t, err)

	gt.Number(t, summary.Renamed).Equal(0)
	gt.Number(t, len(summary.NonJPEGFiles)).Equal(1)
	gt.Value(t, summary.NonJPEGFiles[0].Filename).Equal("b.png")

	// Nothing moved
	_, err = os.Stat(filepath.Join(sku, "a.jpg"))
	gt.NoError(t, err)
}

func TestRenameAllTargetConflict(t *testing.T) {
	ctx := context.Background()
	outputDir := t.TempDir()

	sku := filepath.Join(outputDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku, 0755))
	writeJPEG(t, filepath.Join(sku, "0.jpg"), 10)
	writeJPEG(t, filepath.Join(sku, "1.jpg"), 20)

	processor := usecase.NewProcessor()
	summary, err := processor.RenameAll(ctx, outputDir)
	gt.NoError(t, err)

	// "0.jpg" cannot take the name "1.jpg" while it is still occupied
	gt.Number(t, summary.Renamed).Equal(1)
	gt.Number(t, len(summary.Errors)).Equal(1)
	gt.Value(t, summary.Errors[0].Reason).Equal("Target filename already exists")

	_, err = os.Stat(filepath.Join(sku, "0.jpg"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(sku, "2.jpg"))
	gt.NoError(t, err)
}
