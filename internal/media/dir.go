package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kozaktomas/frushion/internal/frame"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// DirSource replays the images of a directory in name order, looping forever.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Name() string {
	return "dir:" + s.dir
}

// Open lists the directory. OS permission errors map to ErrPermissionDenied and an
// empty directory to ErrNoFrame.
func (s *DirSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, s.dir)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.Contains(imageExtensions, ext) {
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrNoFrame, s.dir)
	}

	return &dirStream{files: files}, nil
}

type dirStream struct {
	mu     sync.Mutex
	files  []string
	next   int
	closed bool
}

func (d *dirStream) ReadFrame(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := frame.Decode(data, filepath.Base(path))
	if err != nil {
		if errors.Is(err, frame.ErrEmpty) {
			return nil, ErrNoFrame
		}
		return nil, err
	}
	return f, nil
}

func (d *dirStream) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
