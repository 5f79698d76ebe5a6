package vfx

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 0xFF, A: 0xFF})
		}
	}
	path := filepath.Join(t.TempDir(), "tex.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func TestTextureHandleCloneSharesAsset(t *testing.T) {
	server := NewAssetServer(nil)
	handle := server.CreateTexture(make([]uint8, 4*4*4), 4, 4)

	clone := handle.Clone()
	assert.Equal(t, handle.Id(), clone.Id())
	assert.True(t, clone.Valid())

	asset, ok := server.Texture(clone)
	require.True(t, ok)
	assert.Equal(t, uint32(4), asset.Width())
}

func TestZeroTextureHandleIsInvalid(t *testing.T) {
	var handle TextureHandle
	assert.False(t, handle.Valid())
	assert.False(t, handle.Clone().Valid())
}

func TestLoadTextureKeepsPow2Dimensions(t *testing.T) {
	server := NewAssetServer(nil)
	handle := server.LoadTexture(writeTestPNG(t, 4, 4))

	asset, ok := server.Texture(handle)
	require.True(t, ok)
	assert.Equal(t, uint32(4), asset.Width())
	assert.Equal(t, uint32(4), asset.Height())
	assert.Len(t, asset.Texels(), 4*4*4)
	assert.Equal(t, uint8(0xFF), asset.Texels()[0], "red channel")
}

func TestLoadTextureSnapsToPow2(t *testing.T) {
	server := NewAssetServer(nil)
	handle := server.LoadTexture(writeTestPNG(t, 5, 3))

	asset, ok := server.Texture(handle)
	require.True(t, ok)
	assert.Equal(t, uint32(4), asset.Width())
	assert.Equal(t, uint32(2), asset.Height())
}

func TestLoadTextureMissingFilePanics(t *testing.T) {
	server := NewAssetServer(nil)
	require.Panics(t, func() {
		server.LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	})
}

func TestDistinctTexturesGetDistinctIds(t *testing.T) {
	server := NewAssetServer(nil)
	a := server.CreateTexture(nil, 1, 1)
	b := server.CreateTexture(nil, 1, 1)
	assert.NotEqual(t, a.Id(), b.Id())
}

func TestFloorPow2(t *testing.T) {
	assert.Equal(t, 1, floorPow2(0))
	assert.Equal(t, 1, floorPow2(1))
	assert.Equal(t, 2, floorPow2(3))
	assert.Equal(t, 4, floorPow2(4))
	assert.Equal(t, 256, floorPow2(300))
}
