package usecase_test

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/torus-io/assetpipe/pkg/domain/model"
	"github.com/torus-io/assetpipe/pkg/usecase"
)

// noiseJPEG encodes a deterministic noise image. Noise compresses badly, so
// the result is comfortably above the minimum file size, and its resolution
// keeps the quality score above the low-quality cutoff.
func noiseJPEG(t *testing.T) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, 2000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 2000; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	path := filepath.Join(t.TempDir(), "noise.jpg")
	f, err := os.Create(path)
	gt.NoError(t, err)
	gt.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	gt.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	return data
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	f, err := os.Create(path)
	gt.NoError(t, err)
	gt.NoError(t, png.Encode(f, img))
	gt.NoError(t, f.Close())
}

func TestAnalyzeDirectory(t *testing.T) {
	ctx := context.Background()
	photosDir := t.TempDir()

	good := noiseJPEG(t)
	sku1 := filepath.Join(photosDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku1, 0755))
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		gt.NoError(t, os.WriteFile(filepath.Join(sku1, name), good, 0644))
	}
	gt.NoError(t, os.WriteFile(filepath.Join(sku1, "notes.txt"), []byte("ignore me"), 0644))

	sku2 := filepath.Join(photosDir, "SKU-002")
	gt.NoError(t, os.MkdirAll(sku2, 0755))
	writePNG(t, filepath.Join(sku2, "shot.png"), 300, 300)

	gt.NoError(t, os.MkdirAll(filepath.Join(photosDir, "SKU-003"), 0755))

	analyzer := usecase.NewAnalyzer()
	results, err := analyzer.AnalyzeDirectory(ctx, photosDir)
	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(3)

	bySKU := map[string]*model.SKUSummary{}
	for _, r := range results {
		bySKU[r.SKU] = r
	}

	t.Run("clean SKU has no issues", func(t *testing.T) {
		r := bySKU["SKU-001"]
		gt.Number(t, r.TotalPhotos).Equal(3)
		gt.Number(t, r.ValidPhotos).Equal(3)
		gt.Number(t, r.InvalidPhotos).Equal(0)
		gt.Number(t, len(r.Issues)).Equal(0)
	})

	t.Run("small white PNG trips every applicable check", func(t *testing.T) {
		r := bySKU["SKU-002"]
		gt.Number(t, r.TotalPhotos).Equal(1)
		gt.Number(t, r.ValidPhotos).Equal(0)
		gt.Number(t, r.InvalidPhotos).Equal(1)
		gt.Number(t, r.NonJPEGCount).Equal(1)
		gt.Number(t, r.UndersizedCount).Equal(1)
		gt.Number(t, r.BackgroundCount).Equal(1)
		gt.Number(t, r.LowQualityCount).Equal(1)

		gt.Value(t, contains(r.Issues, "Too few photos (1)")).Equal(true)
		gt.Value(t, contains(r.Issues, "Has 1 non-JPEG files")).Equal(true)
	})

	t.Run("empty SKU directory", func(t *testing.T) {
		r := bySKU["SKU-003"]
		gt.Number(t, r.TotalPhotos).Equal(0)
		gt.Value(t, contains(r.Issues, "No photos found")).Equal(true)
	})

	t.Run("record validity mirrors its issue list", func(t *testing.T) {
		for _, r := range results {
			for _, p := range r.Photos {
				gt.Value(t, p.IsValid).Equal(len(p.Issues) == 0)
			}
		}
	})
}

func TestAnalyzeUndecodableFile(t *testing.T) {
	ctx := context.Background()
	photosDir := t.TempDir()
	sku := filepath.Join(photosDir, "SKU-001")
	gt.NoError(t, os.MkdirAll(sku, 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(sku, "broken.jpg"), []byte("not a jpeg"), 0644))

	analyzer := usecase.NewAnalyzer()
	results, err := analyzer.AnalyzeDirectory(ctx, photosDir)
	gt.NoError(t, err)
	gt.Number(t, len(results)).Equal(1)

	r := results[0]
	gt.Number(t, r.TotalPhotos).Equal(1)
	gt.Number(t, r.InvalidPhotos).Equal(1)

	// The decode failure is the issue; quality was never measured
	gt.Number(t, r.LowQualityCount).Equal(0)
	gt.Number(t, r.Photos[0].QualityScore).Equal(1.0)
	gt.Value(t, contains(r.Issues, "Has 1 low quality files")).Equal(false)
}

func TestAnalyzeDirectoryMissing(t *testing.T) {
	analyzer := usecase.NewAnalyzer()
	_, err := analyzer.AnalyzeDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	gt.Error(t, err)
}

func TestFindMissingSKUs(t *testing.T) {
	ctx := context.Background()
	photosDir := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(photosDir, "SKU-A"), 0755))

	manifest := filepath.Join(t.TempDir(), "manifest.csv")
	content := "sku,supplier\nSKU-A,Acme\nSKU-B,Beta\nSKU-B,Beta\n,\n"
	gt.NoError(t, os.WriteFile(manifest, []byte(content), 0644))

	analyzer := usecase.NewAnalyzer()
	missing, err := analyzer.FindMissingSKUs(ctx, manifest, photosDir)
	gt.NoError(t, err)

	gt.Number(t, len(missing)).Equal(1)
	gt.Value(t, missing[0].SKU).Equal("SKU-B")
	gt.Value(t, missing[0].Supplier).Equal("Beta")
	gt.Value(t, missing[0].Reason).Equal("Missing directory")
}

func TestFindMissingSKUsNoSKUColumn(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "manifest.csv")
	gt.NoError(t, os.WriteFile(manifest, []byte("name,vendor\nfoo,bar\n"), 0644))

	analyzer := usecase.NewAnalyzer()
	_, err := analyzer.FindMissingSKUs(context.Background(), manifest, t.TempDir())
	gt.Error(t, err)
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
