package engine

import (
	"testing"

	"Ember3D/internal/config"
	"Ember3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestConfigureCamera(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := config.CameraConfig{Fov: 60, Near: 0.5, Far: 50, Distance: 8, OrbitSpeed: 0}

	configureCamera(cam, cfg)

	assert.Equal(t, float32(60), cam.Fov)
	assert.Equal(t, float32(0.5), cam.Near)
	assert.Equal(t, float32(50), cam.Far)
	assert.Equal(t, float32(0), cam.OrbitSpeed)
	assert.True(t, cam.Projection.ApproxEqualThreshold(
		mgl32.Perspective(mgl32.DegToRad(60), cam.AspectRatio, 0.5, 50), 1e-6))
	assert.InDelta(t, 8.0, cam.Position.Sub(cam.Target).Len(), 1e-4)
}

func TestConfigureCameraClampsDistance(t *testing.T) {
	cam := renderer.NewDefaultCamera(800, 600)
	cfg := config.Default().Camera
	cfg.Distance = 500

	configureCamera(cam, cfg)

	assert.Equal(t, cfg.Far/2, cam.Distance)
}

func TestPlaceModel(t *testing.T) {
	model := renderer.NewSkinnedModel()
	cfg := config.Default().Animation
	cfg.Scale = 2
	cfg.Rotation = [3]float32{0, 90, 0}
	cfg.Position = [3]float32{0, -1, 0}

	placeModel(model, cfg)

	p := model.ModelMatrix.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0.0, p.X(), 1e-5)
	assert.InDelta(t, -1.0, p.Y(), 1e-5)
	assert.InDelta(t, -2.0, p.Z(), 1e-5)
}
