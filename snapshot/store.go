// Package snapshot persists single still-image snapshots of motion frames.
package snapshot

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultThumbnailWidth bounds the optional thumbnail's larger dimension.
const DefaultThumbnailWidth = 320

// ErrThumbnail reports that the primary snapshot was written but its
// thumbnail could not be. The returned path is still valid and durable.
var ErrThumbnail = errors.New("thumbnail write failed")

// Options configures a Store.
type Options struct {
	// Dir is the base directory; created on demand.
	Dir string
	// Thumbnail additionally saves a downscaled copy next to each snapshot.
	Thumbnail bool
	// ThumbnailWidth bounds the thumbnail width; zero uses the default.
	ThumbnailWidth uint
}

// Store writes encoded motion snapshots under a configured base directory.
// Save failures are side-channel failures: the caller logs them and continues,
// they never abort the frame pipeline.
type Store struct {
	dir        string
	thumbnail  bool
	thumbWidth uint
}

// NewStore constructs a Store from opts.
func NewStore(opts Options) *Store {
	if opts.ThumbnailWidth == 0 {
		opts.ThumbnailWidth = DefaultThumbnailWidth
	}
	return &Store{
		dir:        opts.Dir,
		thumbnail:  opts.Thumbnail,
		thumbWidth: opts.ThumbnailWidth,
	}
}

// Save encodes frame as JPEG and writes it as
// motion_<yyyyMMdd_HHmmss_fff>.jpg under the base directory, creating the
// directory if absent. It returns the written path.
func (s *Store) Save(frame gocv.Mat, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating snapshot directory")
	}

	path := filepath.Join(s.dir, Filename(now))
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return "", errors.Wrap(err, "encoding snapshot")
	}
	defer buf.Close()

	if err := os.WriteFile(path, buf.GetBytes(), 0o644); err != nil {
		return "", errors.Wrap(err, "writing snapshot")
	}

	if s.thumbnail {
		if err := s.saveThumbnail(frame, path); err != nil {
			// The full snapshot is already durable; a thumbnail failure is
			// distinguishable from a failed save via ErrThumbnail.
			return path, errors.Wrap(ErrThumbnail, err.Error())
		}
	}
	return path, nil
}

func (s *Store) saveThumbnail(frame gocv.Mat, snapshotPath string) error {
	img, err := frame.ToImage()
	if err != nil {
		return err
	}
	thumb := resize.Thumbnail(s.thumbWidth, s.thumbWidth, img, resize.Lanczos3)

	ext := filepath.Ext(snapshotPath)
	path := snapshotPath[:len(snapshotPath)-len(ext)] + "_thumb" + ext
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, thumb, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Filename returns the snapshot name for the given instant:
// motion_<yyyyMMdd_HHmmss_fff>.jpg.
func Filename(now time.Time) string {
	return fmt.Sprintf("motion_%s_%03d.jpg",
		now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond))
}
