package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"go-homereel/types"
)

// Uploads smaller than this are almost certainly not usable photos.
const (
	minUploadWidth  = 320
	minUploadHeight = 240
)

// Ingest validates raw uploaded image bytes and builds a user ImageAsset.
// The raw upload itself is not persisted anywhere; the asset owns the
// bytes from here on.
func Ingest(data []byte, role types.Role) (types.ImageAsset, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.ImageAsset{}, fmt.Errorf("upload is not a decodable image: %w", err)
	}
	if cfg.Width < minUploadWidth || cfg.Height < minUploadHeight {
		return types.ImageAsset{}, fmt.Errorf("upload too small: %dx%d (minimum %dx%d, format %s)",
			cfg.Width, cfg.Height, minUploadWidth, minUploadHeight, format)
	}

	sum := sha256.Sum256(data)
	return types.ImageAsset{
		ID:          uuid.NewString(),
		Fingerprint: hex.EncodeToString(sum[:]),
		Pixels:      data,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Source:      types.SourceUser,
		Role:        role,
	}, nil
}
