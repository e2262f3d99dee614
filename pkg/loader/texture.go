package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/xktkit/pkg/scene"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// Texture media type codes stored in texture attributes.
const (
	MediaTypeJPEG = 10001
	MediaTypePNG  = 10002
	MediaTypeGIF  = 10003
)

// Texture attribute slots, TextureAttributesStride per texture.
const (
	attrCompressed = iota
	attrMediaType
	attrMinFilter
	attrMagFilter
	attrWrapS
	attrWrapT
	attrWrapR
	attrWidth
	attrHeight
)

var mediaTypeNames = map[uint16]string{
	MediaTypeJPEG: "image/jpeg",
	MediaTypePNG:  "image/png",
	MediaTypeGIF:  "image/gif",
}

func textureID(modelID string, i int) string {
	return fmt.Sprintf("%s.texture%d", modelID, i)
}

func textureSetID(modelID string, i int) string {
	return fmt.Sprintf("%s.textureSet%d", modelID, i)
}

// createTextures creates every texture and then every texture set, returning the
// texture set ids by index.
func (a *assembler) createTextures() ([]string, error) {
	m := a.model
	for i := 0; i < m.NumTextures(); i++ {
		p, err := a.textureParams(i)
		if err != nil {
			return nil, err
		}
		if err := a.out.CreateTexture(p); err != nil {
			return nil, fmt.Errorf("creating texture %d: %w", i, err)
		}
		a.stats.Textures++
	}

	setIDs := make([]string, m.NumTextureSets())
	for i := range setIDs {
		slots := m.EachTextureSetTextures[i*xkt.TextureSetStride : (i+1)*xkt.TextureSetStride]
		slot := func(s int) string {
			if slots[s] < 0 {
				return ""
			}
			return textureID(a.opts.ModelID, int(slots[s]))
		}
		setIDs[i] = textureSetID(a.opts.ModelID, i)
		p := scene.TextureSetParams{
			ID:                         setIDs[i],
			ColorTextureID:             slot(0),
			MetallicRoughnessTextureID: slot(1),
			NormalsTextureID:           slot(2),
			EmissiveTextureID:          slot(3),
			OcclusionTextureID:         slot(4),
		}
		if err := a.out.CreateTextureSet(p); err != nil {
			return nil, fmt.Errorf("creating texture set %d: %w", i, err)
		}
		a.stats.TextureSets++
	}
	return setIDs, nil
}

func (a *assembler) textureParams(i int) (scene.TextureParams, error) {
	m := a.model
	start, end := xkt.Range(m.EachTextureDataPortion, i, len(m.TextureData))
	data := m.TextureData[start:end]
	attrs := m.EachTextureAttributes[i*xkt.TextureAttributesStride : (i+1)*xkt.TextureAttributesStride]

	p := scene.TextureParams{
		ID:        textureID(a.opts.ModelID, i),
		Width:     int(attrs[attrWidth]),
		Height:    int(attrs[attrHeight]),
		MinFilter: attrs[attrMinFilter],
		MagFilter: attrs[attrMagFilter],
		WrapS:     attrs[attrWrapS],
		WrapT:     attrs[attrWrapT],
		WrapR:     attrs[attrWrapR],
	}

	if attrs[attrCompressed] == 0 {
		if len(data) != p.Width*p.Height*4 {
			return p, fmt.Errorf("%w: texture %d has %d bytes for %dx%d RGBA",
				xkt.ErrCorruptContainer, i, len(data), p.Width, p.Height)
		}
		img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		copy(img.Pix, data)
		p.Image = img
		return p, nil
	}

	p.Data = data
	p.MediaType = mediaTypeNames[attrs[attrMediaType]]
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		p.MediaType = kind.MIME.Value
	}

	if a.opts.DecodeTextures {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			a.stats.TexturesUndecoded++
			a.log.Debug("texture left encoded",
				zap.Int("texture", i),
				zap.String("mediaType", p.MediaType),
				zap.Error(err))
			return p, nil
		}
		p.Image = img
		b := img.Bounds()
		p.Width, p.Height = b.Dx(), b.Dy()
	}
	return p, nil
}
