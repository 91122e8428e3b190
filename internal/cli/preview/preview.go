// Package preview управляет локальными превью файлов, выбранных для загрузки.
// Каждый полученный handle нужно освободить; Live показывает неосвобождённые.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"HomeLedger/internal/cli/model"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension - максимальная ширина или высота миниатюры.
const MaxDimension = 256

// JPEGQuality - качество сжатия миниатюр.
const JPEGQuality = 80

// Handle - живое превью одного локального файла.
type Handle struct {
	ID     string
	Source model.LocalFile
	Kind   model.MediaKind
	// Path - путь к миниатюре; пусто, если её нет (видео, нечитаемые изображения).
	Path string

	once    sync.Once
	release func() error
	err     error
}

// Release освобождает превью; повторный вызов ничего не делает.
func (h *Handle) Release() error {
	h.once.Do(func() {
		if h.release != nil {
			h.err = h.release()
		}
	})
	return h.err
}

// Factory выдаёт превью.
type Factory interface {
	Acquire(file model.LocalFile) (*Handle, error)
}

// ThumbnailFactory пишет JPEG-миниатюры изображений в Dir.
type ThumbnailFactory struct {
	Dir    string
	MaxDim int

	mu   sync.Mutex
	live map[string]*Handle
}

// NewThumbnailFactory создаёт фабрику, пишущую в dir (os.TempDir(), если пусто).
func NewThumbnailFactory(dir string) *ThumbnailFactory {
	return &ThumbnailFactory{Dir: dir, MaxDim: MaxDimension, live: map[string]*Handle{}}
}

// Acquire открывает превью файла; сам файл должен существовать.
func (f *ThumbnailFactory) Acquire(file model.LocalFile) (*Handle, error) {
	if _, err := os.Stat(file.Path); err != nil {
		return nil, fmt.Errorf("preview %s: %w", file.Name, err)
	}
	h := &Handle{ID: uuid.NewString(), Source: file, Kind: file.Kind()}
	if h.Kind == model.MediaImage {
		p, err := f.thumbnail(h.ID, file.Path)
		if err == nil {
			h.Path = p
		}
		// не удалось декодировать: превью без миниатюры
	}
	h.release = func() error { return f.drop(h) }

	f.mu.Lock()
	if f.live == nil {
		f.live = map[string]*Handle{}
	}
	f.live[h.ID] = h
	f.mu.Unlock()
	return h, nil
}

// Live возвращает число неосвобождённых превью.
func (f *ThumbnailFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *ThumbnailFactory) drop(h *Handle) error {
	f.mu.Lock()
	delete(f.live, h.ID)
	f.mu.Unlock()
	if h.Path == "" {
		return nil
	}
	if err := os.Remove(h.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *ThumbnailFactory) thumbnail(id, src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	maxDim := f.MaxDim
	if maxDim <= 0 {
		maxDim = MaxDimension
	}
	img = downscale(img, maxDim)

	dir := f.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, "preview-"+id+".jpg")
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("encoding JPEG: %w", err)
	}
	return dst, out.Close()
}

// downscale вписывает img в maxDim x maxDim с сохранением пропорций.
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	nw, nh := maxDim, maxDim
	if w > h {
		nh = h * maxDim / w
	} else {
		nw = w * maxDim / h
	}
	nw, nh = max(nw, 1), max(nh, 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
