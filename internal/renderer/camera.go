package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point. Yaw and Pitch are in degrees.
type Camera struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Front      mgl32.Vec3
	Up         mgl32.Vec3
	Right      mgl32.Vec3
	Projection mgl32.Mat4
	Pitch      float32
	Yaw        float32
	Distance   float32

	WorldUp     mgl32.Vec3
	OrbitSpeed  float32 // degrees per second of automatic orbit
	Sensitivity float32
	Fov         float32
	Near        float32
	Far         float32
	AspectRatio float32
	InvertMouse bool
}

func NewDefaultCamera(width, height int32) *Camera {
	camera := Camera{
		Target:      mgl32.Vec3{0, 1, 0},
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Pitch:       -10.0,
		Yaw:         -90.0,
		Distance:    4,
		OrbitSpeed:  10,
		Sensitivity: 0.2,
		Fov:         45.0,
		Near:        0.1,
		Far:         100.0,
		AspectRatio: float32(width) / float32(height),
	}
	camera.updateCameraVectors()
	camera.UpdateProjection()
	return &camera
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

// Setter methods that automatically update projection
func (c *Camera) SetNear(near float32) {
	c.Near = near
	c.UpdateProjection()
}

func (c *Camera) SetFar(far float32) {
	c.Far = far
	c.UpdateProjection()
}

func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

// Advance orbits the camera by OrbitSpeed for deltaTime seconds.
func (c *Camera) Advance(deltaTime float32) {
	if c.OrbitSpeed == 0 {
		return
	}
	c.Yaw = float32(math.Mod(float64(c.Yaw+c.OrbitSpeed*deltaTime), 360))
	c.updateCameraVectors()
}

func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	xoffset *= c.Sensitivity
	yoffset *= c.Sensitivity

	c.Yaw += xoffset
	if c.InvertMouse {
		c.Pitch -= yoffset
	} else {
		c.Pitch += yoffset
	}
	if constrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -89.0, 89.0) // Prevent extreme pitch values
	}
	c.updateCameraVectors()
}

// Zoom moves the camera toward the target, never closer than Near.
func (c *Camera) Zoom(offset float32) {
	c.SetDistance(c.Distance - offset)
}

// SetDistance places the camera distance away from the target, clamped to
// [2*Near, Far/2].
func (c *Camera) SetDistance(distance float32) {
	c.Distance = mgl32.Clamp(distance, c.Near*2, c.Far/2)
	c.updateCameraVectors()
}

func (c *Camera) updateCameraVectors() {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))

	// Offset from the target to the camera.
	offset := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
	c.Position = c.Target.Sub(offset.Mul(c.Distance))

	c.Front = c.Target.Sub(c.Position).Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
