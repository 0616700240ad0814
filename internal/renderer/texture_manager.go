package renderer

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"Ember3D/internal/ibl"
	"Ember3D/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// CacheStats counts path lookups against the texture cache. Live is the
// number of textures still held by at least one reference.
type CacheStats struct {
	Uploaded int
	Hits     int
	Misses   int
	Live     int
}

// TextureManager loads 2D textures once per path and reference counts them.
// It satisfies ibl.Loader.
type TextureManager struct {
	textureCache    map[string]uint32 // path -> OpenGL texture ID
	textureRefCount map[uint32]int    // texture ID -> reference count
	texturePaths    map[uint32]string // texture ID -> path (for debugging)
	mu              sync.RWMutex
	stats           CacheStats
}

var _ ibl.Loader = (*TextureManager)(nil)

// NewTextureManager creates a new texture manager instance
func NewTextureManager() *TextureManager {
	return &TextureManager{
		textureCache:    make(map[string]uint32),
		textureRefCount: make(map[uint32]int),
		texturePaths:    make(map[uint32]string),
	}
}

// HDRImage is a decoded radiance image as tightly packed RGB floats, bottom row first.
type HDRImage struct {
	Width, Height int
	Pix           []float32
}

// DecodeHDR reads a Radiance RGBE file and flips it vertically for GL upload.
func DecodeHDR(path string) (*HDRImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := rgbe.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img, ok := decoded.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("decode %s: %T is not an HDR image", path, decoded)
	}

	b := img.Bounds()
	out := &HDRImage{Width: b.Dx(), Height: b.Dy(), Pix: make([]float32, b.Dx()*b.Dy()*3)}
	for y := 0; y < out.Height; y++ {
		row := (out.Height - 1 - y) * out.Width * 3
		for x := 0; x < out.Width; x++ {
			r, g, bl, _ := img.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
			i := row + x*3
			out.Pix[i+0] = float32(r)
			out.Pix[i+1] = float32(g)
			out.Pix[i+2] = float32(bl)
		}
	}
	return out, nil
}

// DecodeImage reads any registered LDR format into RGBA, flipped vertically.
func DecodeImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	flipped := image.NewRGBA(rgba.Rect)
	rowBytes := rgba.Rect.Dx() * 4
	for y := 0; y < rgba.Rect.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+rowBytes]
		dst := (rgba.Rect.Dy() - 1 - y) * flipped.Stride
		copy(flipped.Pix[dst:dst+rowBytes], src)
	}
	return flipped, nil
}

// LoadHDR uploads a radiance image as an RGB16F texture with clamped,
// linearly filtered sampling.
func (tm *TextureManager) LoadHDR(filePath string) (ibl.Texture, error) {
	return tm.load(filePath, func() (uint32, int, int, error) {
		img, err := DecodeHDR(filePath)
		if err != nil {
			return 0, 0, 0, err
		}
		var textureID uint32
		gl.GenTextures(1, &textureID)
		gl.BindTexture(gl.TEXTURE_2D, textureID)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(img.Width), int32(img.Height), 0, gl.RGB, gl.FLOAT, gl.Ptr(img.Pix))
		setClampedLinear(gl.TEXTURE_2D)
		return textureID, img.Width, img.Height, nil
	})
}

// LoadImage uploads an LDR image as RGBA8.
func (tm *TextureManager) LoadImage(filePath string) (ibl.Texture, error) {
	return tm.load(filePath, func() (uint32, int, int, error) {
		rgba, err := DecodeImage(filePath)
		if err != nil {
			return 0, 0, 0, err
		}
		w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
		var textureID uint32
		gl.GenTextures(1, &textureID)
		gl.BindTexture(gl.TEXTURE_2D, textureID)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
		setClampedLinear(gl.TEXTURE_2D)
		return textureID, w, h, nil
	})
}

func setClampedLinear(target uint32) {
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
}

// load returns the cached texture for filePath or creates it with upload.
// Every successful call adds one reference.
func (tm *TextureManager) load(filePath string, upload func() (uint32, int, int, error)) (ibl.Texture, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if textureID, exists := tm.textureCache[filePath]; exists {
		tm.textureRefCount[textureID]++
		tm.stats.Hits++

		logger.Log.Debug("Texture cache hit",
			zap.String("path", filePath),
			zap.Uint32("textureID", textureID),
			zap.Int("refCount", tm.textureRefCount[textureID]))

		return ibl.Texture(textureID), nil
	}

	tm.stats.Misses++
	textureID, width, height, err := upload()
	if err != nil {
		return 0, err
	}

	tm.textureCache[filePath] = textureID
	tm.textureRefCount[textureID] = 1
	tm.texturePaths[textureID] = filePath
	tm.stats.Uploaded++
	tm.stats.Live++

	logger.Log.Info("Texture loaded and cached",
		zap.String("path", filePath),
		zap.Uint32("textureID", textureID),
		zap.Int("width", width),
		zap.Int("height", height))

	return ibl.Texture(textureID), nil
}

// ReleaseTexture decrements reference count and frees texture if count reaches 0
func (tm *TextureManager) ReleaseTexture(texture ibl.Texture) {
	textureID := uint32(texture)
	if textureID == 0 {
		return
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, exists := tm.textureRefCount[textureID]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture",
			zap.Uint32("textureID", textureID))
		return
	}

	refCount--
	tm.textureRefCount[textureID] = refCount

	if refCount <= 0 {
		gl.DeleteTextures(1, &textureID)

		path := tm.texturePaths[textureID]
		delete(tm.textureCache, path)
		delete(tm.textureRefCount, textureID)
		delete(tm.texturePaths, textureID)
		tm.stats.Live--

		logger.Log.Info("Texture freed",
			zap.Uint32("textureID", textureID),
			zap.String("path", path))
	}
}

// Stats snapshots the counters.
func (tm *TextureManager) Stats() CacheStats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := tm.stats
	stats.Live = len(tm.textureRefCount)
	return stats
}

func (tm *TextureManager) LogStats() {
	stats := tm.Stats()
	logger.Log.Info("Texture cache",
		zap.Int("uploaded", stats.Uploaded),
		zap.Int("live", stats.Live),
		zap.Int("hits", stats.Hits),
		zap.Int("misses", stats.Misses))
}

// Clear deletes every cached texture regardless of its reference count.
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for textureID := range tm.textureRefCount {
		gl.DeleteTextures(1, &textureID)
	}

	tm.textureCache = make(map[string]uint32)
	tm.textureRefCount = make(map[uint32]int)
	tm.texturePaths = make(map[uint32]string)
	tm.stats.Live = 0

	logger.Log.Info("Texture manager cleared")
}
