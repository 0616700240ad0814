package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewDefaultCamera(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	if cam == nil {
		t.Fatal("NewDefaultCamera returned nil")
	}

	if cam.Position == cam.Target {
		t.Error("Camera should not sit on its target")
	}

	if math.Abs(float64(cam.AspectRatio)-800.0/600.0) > 1e-6 {
		t.Errorf("Aspect ratio should be width/height, got %f", cam.AspectRatio)
	}

	if cam.Position.Y() <= cam.Target.Y() {
		t.Error("Default camera should look down on the target")
	}
}

func TestCameraGetViewMatrix(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	view := cam.GetViewMatrix()

	if view.At(3, 3) != 1.0 {
		t.Error("View matrix should be valid (w component = 1)")
	}

	// The target lands on the negative view axis at Distance.
	p := view.Mul4x1(cam.Target.Vec4(1))
	if math.Abs(float64(p.Z()+cam.Distance)) > 1e-4 || math.Abs(float64(p.X())) > 1e-4 {
		t.Errorf("Target should be straight ahead, got %v", p)
	}
}

func TestCameraGetProjectionMatrix(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	proj := cam.GetProjectionMatrix()

	if proj.At(3, 3) != 0.0 {
		t.Error("Perspective projection should have w=0 at (3,3)")
	}
}

func TestCameraGetViewProjection(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	vp := cam.GetViewProjection()

	zero := mgl32.Mat4{}
	if vp == zero {
		t.Error("ViewProjection should not be zero matrix")
	}
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	for i := 0; i < 50; i++ {
		cam.Advance(0.5)
		d := cam.Position.Sub(cam.Target).Len()
		if math.Abs(float64(d-cam.Distance)) > 1e-4 {
			t.Fatalf("step %d: distance %f, want %f", i, d, cam.Distance)
		}
	}
	if cam.Yaw < -360 || cam.Yaw > 360 {
		t.Errorf("Yaw should stay wrapped, got %f", cam.Yaw)
	}
}

func TestCameraUpdateVectors(t *testing.T) {
	cam := NewDefaultCamera(800, 600)
	cam.Yaw = -90
	cam.Pitch = 0

	cam.updateCameraVectors()

	frontLen := cam.Front.Len()
	if math.Abs(float64(frontLen)-1.0) > 0.01 {
		t.Errorf("Front vector should be normalized, length=%f", frontLen)
	}
	if !cam.Front.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("Front should face -Z, got %v", cam.Front)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	cam.ProcessMouseMovement(0, 10000, true)

	if cam.Pitch > 89 || cam.Pitch < -89 {
		t.Errorf("Pitch should be clamped, got %f", cam.Pitch)
	}
}

func TestCameraZoomClamp(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	cam.Zoom(1000)

	if cam.Distance < cam.Near*2 {
		t.Errorf("Zoom should stop at the near limit, got %f", cam.Distance)
	}
}

func TestCameraSettersRebuildProjection(t *testing.T) {
	cam := NewDefaultCamera(800, 600)

	cam.SetFov(70)
	cam.SetNear(1)
	cam.SetFar(20)

	want := mgl32.Perspective(mgl32.DegToRad(70), cam.AspectRatio, 1, 20)
	if !cam.Projection.ApproxEqualThreshold(want, 1e-6) {
		t.Errorf("Projection not rebuilt, got %v", cam.Projection)
	}
}
