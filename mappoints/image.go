package mappoints

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lewtec/mappoints/internal/domain"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxDescriptionLength is the length descriptions are cut to when points are
// added from the CLI.
const MaxDescriptionLength = 50

// TruncateDescription cuts description to MaxDescriptionLength runes.
func TruncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) > MaxDescriptionLength {
		return string(runes[:MaxDescriptionLength])
	}
	return description
}

// CheckImage returns the format of the image at filepath, or an error when it
// is not an image this build can decode.
func CheckImage(filepath string) (string, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", err
	}
	return format, nil
}

// ManagedImageName is the file name a point image gets inside the images directory.
func ManagedImageName(latitude, longitude float64, ext string) string {
	return fmt.Sprintf("point_%s_%s%s", formatCoordinate(latitude), formatCoordinate(longitude), ext)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AddPointFromFile copies source into the images directory and stores a point
// referencing the copy. If storing the point fails the copy is removed again.
func (s *PointStore) AddPointFromFile(ctx context.Context, latitude, longitude float64, description, source string) (*domain.Point, error) {
	description = TruncateDescription(description)

	info, err := os.Stat(source)
	if err != nil {
		return nil, &domain.AssetError{Path: source, Op: "reading source image", Err: err}
	}
	if info.IsDir() {
		return nil, &domain.AssetError{Path: source, Op: "reading source image", Err: errors.New("is a directory")}
	}
	if format, err := CheckImage(source); err != nil {
		// HEIC, SVG and friends are copied as they are
		log.Warn().Err(err).Str("source", source).Msg("source image could not be decoded, copying it anyway")
	} else {
		log.Debug().Str("source", source).Str("format", format).Msg("source image checked")
	}

	imagePath, err := s.copyImage(source, latitude, longitude)
	if err != nil {
		return nil, err
	}
	copied := s.Config.Resolve(filepath.FromSlash(imagePath))

	point, err := s.insert(ctx, latitude, longitude, description, imagePath)
	if err != nil {
		if rmErr := os.Remove(copied); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Error().Err(rmErr).Str("image", copied).Msg("while removing copied image after failed insert")
		} else {
			log.Debug().Str("image", copied).Msg("removed copied image after failed insert")
		}
		return nil, err
	}
	return point, nil
}

// copyImage copies source next to the other point images and returns the path
// to store, relative to the data directory unless the images directory is absolute.
func (s *PointStore) copyImage(source string, latitude, longitude float64) (string, error) {
	outputDir := s.Config.ImagesPath()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &domain.AssetError{Path: outputDir, Op: "creating images directory", Err: err}
	}

	tempFile := filepath.Join(outputDir, fmt.Sprintf(".%s.tmp", uuid.New()))
	if err := copyFile(source, tempFile); err != nil {
		os.Remove(tempFile)
		return "", &domain.AssetError{Path: source, Op: "copying image", Err: err}
	}

	name, err := freeImageName(outputDir, latitude, longitude, strings.ToLower(filepath.Ext(source)))
	if err != nil {
		os.Remove(tempFile)
		return "", &domain.AssetError{Path: outputDir, Op: "choosing image name", Err: err}
	}
	err = os.Rename(tempFile, filepath.Join(outputDir, name))
	if err != nil {
		os.Remove(tempFile)
		return "", &domain.AssetError{Path: source, Op: "copying image", Err: err}
	}
	log.Debug().Str("source", source).Str("image", name).Msg("copied point image")

	return filepath.ToSlash(filepath.Join(s.Config.ImagesDir, name)), nil
}

// freeImageName picks the managed name for the coordinates, adding a counter
// when another point at the same coordinates already owns it.
func freeImageName(dir string, latitude, longitude float64, ext string) (string, error) {
	base := strings.TrimSuffix(ManagedImageName(latitude, longitude, ext), ext)
	for i := 0; i < 1000; i++ {
		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("too many images for point %s", base)
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if info, err := in.Stat(); err == nil {
		// keep the modification time like a plain file copy would
		os.Chtimes(destination, info.ModTime(), info.ModTime())
	}
	return nil
}
