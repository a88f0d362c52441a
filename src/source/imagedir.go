package source

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"shadowlife/src/pixbuf"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

//ImageDir plays the PNG/JPEG files of a directory in name order, looping forever.
//Every image is scaled to the configured size; a file that cannot be decoded
//makes that tick's frame unavailable.
type ImageDir struct {
	dir    string
	files  []string
	width  int
	height int
	log    *slog.Logger

	mu     sync.Mutex
	next   int
	closed bool
}

//NewImageDir lists the images of dir
func NewImageDir(dir string, width int, height int) (*ImageDir, error) {
	if dir == "" {
		return nil, fmt.Errorf("image directory not set")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no png or jpeg images in %s", dir)
	}
	sort.Strings(files)
	return &ImageDir{
		dir:    dir,
		files:  files,
		width:  width,
		height: height,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

//SetLogger sets the logger reporting undecodable images, nil keeps the source silent
func (s *ImageDir) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.log = l
}

//Size returns the frame dimensions
func (s *ImageDir) Size() (int, int) {
	return s.width, s.height
}

//Files returns the image paths in playing order
func (s *ImageDir) Files() []string {
	return append([]string(nil), s.files...)
}

//Close makes the source unavailable
func (s *ImageDir) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

//Frame decodes the next image
func (s *ImageDir) Frame() (*pixbuf.Buffer, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false
	}
	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)
	s.mu.Unlock()

	img, err := decodeFile(path)
	if err != nil {
		s.log.Warn("image frame unavailable", "path", path, "error", err)
		return nil, false
	}
	return pixbuf.FromRGBA(scaleTo(img, s.width, s.height)), true
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

//scaleTo converts img to RGBA of exactly width x height
func scaleTo(img image.Image, width int, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
