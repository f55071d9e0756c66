package usecase

import (
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/m-mizutani/goerr/v2"
)

// decodeImageFile decodes any image format on the extension allow-list
func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open image", goerr.V("path", path))
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image", goerr.V("path", path))
	}
	return img, nil
}
