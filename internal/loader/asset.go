package loader

import (
	"errors"
	"fmt"

	"Ember3D/internal/animation"
	"Ember3D/internal/logger"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

// Asset is a skinned model together with one of its clips.
type Asset struct {
	Path     string
	Meshes   []SkinnedMesh
	Clip     *animation.Clip
	Registry *animation.BoneRegistry
}

// LoadAsset opens path once and reads its skinned meshes and clip clipIndex.
// A model without animations loads with a nil Clip.
func LoadAsset(path string, clipIndex int) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	asset := &Asset{Path: path, Registry: animation.NewBoneRegistry()}
	asset.Meshes, err = LoadSkinnedMeshes(doc, asset.Registry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	asset.Clip, err = AnimationFromDocument(doc, asset.Registry, clipIndex)
	switch {
	case errors.Is(err, ErrNoAnimation):
		logger.Log.Warn("Model has no animation to play",
			zap.String("path", path), zap.Int("clip", clipIndex), zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return asset, nil
}
