package vfx

import (
	"image"
	"image/png"
	"os"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// AssetId identifies a loaded asset inside an AssetServer.
type AssetId string

// TextureFormat mirrors the wgpu texture format values used on upload.
type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm TextureFormat = 0x00000012
)

// TextureHandle is a non-owning, clonable reference to a texture asset.
// The zero value is the "no texture" handle. The asset itself lives in the
// AssetServer for as long as the server does.
type TextureHandle struct {
	id AssetId
}

// Clone returns a handle to the same underlying texture.
func (h TextureHandle) Clone() TextureHandle {
	return TextureHandle{id: h.id}
}

// Id returns the asset id the handle points to.
func (h TextureHandle) Id() AssetId {
	return h.id
}

// Valid reports whether the handle references a texture.
func (h TextureHandle) Valid() bool {
	return h.id != ""
}

// TextureAsset is a decoded RGBA texture ready for GPU upload.
type TextureAsset struct {
	version uint
	texels  []uint8
	width   uint32
	height  uint32
	format  TextureFormat
}

// Width returns the texture width in texels.
func (a TextureAsset) Width() uint32 { return a.width }

// Height returns the texture height in texels.
func (a TextureAsset) Height() uint32 { return a.height }

// Texels returns the raw RGBA texel data.
func (a TextureAsset) Texels() []uint8 { return a.texels }

// AssetServer owns the texture assets referenced by effect modifiers.
type AssetServer struct {
	textures map[AssetId]TextureAsset
	log      Logger
}

// NewAssetServer creates an empty asset server. A nil logger is replaced
// with a no-op logger.
func NewAssetServer(log Logger) *AssetServer {
	if log == nil {
		log = NewNopLogger()
	}
	return &AssetServer{
		textures: make(map[AssetId]TextureAsset),
		log:      log,
	}
}

// CreateTexture registers raw RGBA texels as a texture asset.
func (server *AssetServer) CreateTexture(texels []uint8, texWidth uint32, texHeight uint32) TextureHandle {
	id := makeAssetId()

	server.textures[id] = TextureAsset{
		version: 0,
		texels:  texels,
		width:   texWidth,
		height:  texHeight,
		format:  TextureFormatRGBA8Unorm,
	}

	return TextureHandle{id: id}
}

// LoadTexture decodes a PNG file into an RGBA texture asset. Dimensions
// are snapped down to powers of two so mip chains stay regular.
func (server *AssetServer) LoadTexture(filename string) TextureHandle {
	file, err := os.Open(filename)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		panic(err)
	}

	bounds := img.Bounds()
	w := floorPow2(bounds.Dx())
	h := floorPow2(bounds.Dy())

	rgbaImg := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		xdraw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, xdraw.Src)
	} else {
		server.log.Debugf("resampling texture %s from %dx%d to %dx%d",
			filename, bounds.Dx(), bounds.Dy(), w, h)
		xdraw.BiLinear.Scale(rgbaImg, rgbaImg.Bounds(), img, bounds, xdraw.Src, nil)
	}

	handle := server.CreateTexture(rgbaImg.Pix, uint32(w), uint32(h))
	server.log.Infof("loaded texture %s (%dx%d) as %s", filename, w, h, handle.id)
	return handle
}

// Texture resolves a handle into the stored asset.
func (server *AssetServer) Texture(h TextureHandle) (TextureAsset, bool) {
	asset, ok := server.textures[h.id]
	return asset, ok
}

func floorPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
