// Package engine opens the window, bakes the IBL maps and plays the
// configured skinned model under them.
package engine

import (
	"errors"
	"fmt"
	"runtime"

	"Ember3D/internal/animation"
	"Ember3D/internal/config"
	"Ember3D/internal/ibl"
	"Ember3D/internal/loader"
	"Ember3D/internal/logger"
	"Ember3D/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Engine struct {
	cfg    config.Config
	Width  int32
	Height int32
	Camera *renderer.Camera

	window    *glfw.Window
	textures  *renderer.TextureManager
	backend   *renderer.GLBackend
	generator *ibl.Generator

	equirectangular *renderer.Shader
	irradiance      *renderer.Shader
	prefilter       *renderer.Shader
	skyboxShader    *renderer.Shader
	pbrShader       *renderer.Shader

	skybox *renderer.Skybox
	model  *renderer.SkinnedModel
	player *animation.Player

	lastX, lastY float64
	firstMouse   bool
}

func New(cfg config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		textures:   renderer.NewTextureManager(),
		backend:    renderer.NewGLBackend(),
		firstMouse: true,
	}
}

// Bake runs the IBL precomputation in a hidden window, logs what was built
// and frees everything again.
func (e *Engine) Bake() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.open(false); err != nil {
		return err
	}
	defer glfw.Terminate()
	defer e.release()

	if err := e.initIBL(); err != nil {
		return err
	}
	maps := e.generator.Maps()
	logger.Log.Info("IBL bake finished",
		zap.Uint32("environment", uint32(maps.Environment)),
		zap.Uint32("irradiance", uint32(maps.Irradiance)),
		zap.Uint32("prefilter", uint32(maps.Prefilter)),
		zap.Uint32("brdfLut", uint32(maps.BRDFLut)),
		zap.Int("loadFailures", len(multierr.Errors(e.generator.LoadErrors()))))
	e.textures.LogStats()
	return nil
}

// Run opens the viewer and blocks until the window is closed.
func (e *Engine) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.open(true); err != nil {
		return err
	}
	defer glfw.Terminate()
	defer e.release()

	if err := e.initIBL(); err != nil {
		return err
	}
	if err := e.initScene(); err != nil {
		return err
	}

	e.window.SetCursorPosCallback(e.mouseCallback)
	e.window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		e.Camera.Zoom(float32(yoff) * 0.25)
	})
	e.renderLoop()
	return nil
}

func (e *Engine) open(visible bool) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if !visible {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(int(e.Width), int(e.Height), e.cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	e.window = window
	e.window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not initialize OpenGL: %w", err)
	}
	logger.Log.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Bool("visible", visible))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	return nil
}

func (e *Engine) initIBL() error {
	e.equirectangular = renderer.NewEquirectangularShader()
	e.irradiance = renderer.NewIrradianceShader()
	e.prefilter = renderer.NewPrefilterShader()
	for _, shader := range []*renderer.Shader{e.equirectangular, e.irradiance, e.prefilter} {
		if err := shader.Compile(); err != nil {
			return err
		}
	}
	e.prefilter.Use()
	e.prefilter.SetFloat("environmentResolution", float32(e.cfg.IBL.EnvironmentSize))

	e.generator = ibl.NewGenerator(e.backend, e.textures, ibl.Shaders{
		Equirectangular: e.equirectangular,
		Irradiance:      e.irradiance,
		Prefilter:       e.prefilter,
	}, ibl.Options{
		EnvironmentSize: e.cfg.IBL.EnvironmentSize,
		IrradianceSize:  e.cfg.IBL.IrradianceSize,
		PrefilterSize:   e.cfg.IBL.PrefilterSize,
		PrefilterLevels: e.cfg.IBL.PrefilterLevels,
		Near:            e.cfg.IBL.CaptureNear,
		Far:             e.cfg.IBL.CaptureFar,
	})

	fbWidth, fbHeight := e.window.GetFramebufferSize()
	return e.generator.Init(ibl.Sources{
		Environment: e.cfg.IBL.EnvironmentPath,
		Irradiance:  e.cfg.IBL.IrradiancePath,
		BRDFLut:     e.cfg.IBL.BRDFLutPath,
	}, int32(fbWidth), int32(fbHeight))
}

func (e *Engine) initScene() error {
	e.skyboxShader = renderer.NewSkyboxShader()
	e.pbrShader = renderer.NewSkinnedPBRShader()
	for _, shader := range []*renderer.Shader{e.skyboxShader, e.pbrShader} {
		if err := shader.Compile(); err != nil {
			return err
		}
	}
	e.skybox = renderer.NewSkybox(e.generator.Cube(), e.generator.Maps().Environment, e.skyboxShader)
	e.Camera = renderer.NewDefaultCamera(e.Width, e.Height)
	configureCamera(e.Camera, e.cfg.Camera)

	var err error
	e.player, err = animation.NewPlayer(nil, e.cfg.Animation.MaxBones)
	if err != nil {
		return err
	}

	asset, err := loader.LoadAsset(e.cfg.Animation.ModelPath, e.cfg.Animation.Clip)
	if err != nil {
		// The environment alone is still worth showing.
		logger.Log.Error("Failed to load animated model", zap.String("path", e.cfg.Animation.ModelPath), zap.Error(err))
		return nil
	}
	if err := e.player.Play(asset.Clip); err != nil {
		if !errors.Is(err, animation.ErrBoneCapacity) {
			return err
		}
		logger.Log.Error("Model skeleton exceeds the skinning capacity, showing bind pose", zap.Error(err))
	}
	e.model = renderer.UploadSkinnedModel(asset.Meshes)
	placeModel(e.model, e.cfg.Animation)
	return nil
}

func configureCamera(cam *renderer.Camera, cfg config.CameraConfig) {
	cam.SetFov(cfg.Fov)
	cam.SetNear(cfg.Near)
	cam.SetFar(cfg.Far)
	cam.OrbitSpeed = cfg.OrbitSpeed
	cam.SetDistance(cfg.Distance)
}

func placeModel(model *renderer.SkinnedModel, cfg config.AnimationConfig) {
	model.SetScale(cfg.Scale, cfg.Scale, cfg.Scale)
	model.Rotate(cfg.Rotation[0], cfg.Rotation[1], cfg.Rotation[2])
	model.SetPosition(cfg.Position[0], cfg.Position[1], cfg.Position[2])
}

func (e *Engine) renderLoop() {
	lastTime := glfw.GetTime()

	for !e.window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := float32(currentTime - lastTime)
		lastTime = currentTime

		fbWidth, fbHeight := e.window.GetFramebufferSize()
		if fbWidth > 0 && fbHeight > 0 {
			gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
			e.Camera.SetAspectRatio(float32(fbWidth) / float32(fbHeight))
		}

		if e.window.GetMouseButton(glfw.MouseButtonRight) != glfw.Press {
			e.Camera.Advance(deltaTime)
		}
		e.player.Update(deltaTime)

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		e.drawModel()
		e.skybox.Render(e.Camera.GetViewMatrix(), e.Camera.GetProjectionMatrix())

		e.window.SwapBuffers()
		glfw.PollEvents()
	}
}

func (e *Engine) drawModel() {
	if e.model == nil {
		return
	}
	maps := e.generator.Maps()

	shader := e.pbrShader
	shader.Use()
	shader.SetMat4("projection", e.Camera.GetProjectionMatrix())
	shader.SetMat4("view", e.Camera.GetViewMatrix())
	shader.SetVec3("camPos", e.Camera.Position)
	shader.SetInt("irradianceMap", 0)
	shader.SetInt("prefilterMap", 1)
	shader.SetInt("brdfLUT", 2)
	shader.SetFloat("prefilterLevels", float32(e.cfg.IBL.PrefilterLevels))
	renderer.UploadBoneMatrices(shader, e.player.FinalBoneMatrices())

	e.backend.BindCubemap(0, maps.Irradiance)
	e.backend.BindCubemap(1, maps.Prefilter)
	e.backend.BindTexture2D(2, maps.BRDFLut)

	e.model.Draw(shader)
}

func (e *Engine) release() {
	if e.model != nil {
		e.model.Delete()
	}
	if e.generator != nil {
		e.generator.Release()
	}
	for _, shader := range []*renderer.Shader{e.equirectangular, e.irradiance, e.prefilter, e.skyboxShader, e.pbrShader} {
		if shader != nil {
			shader.Delete()
		}
	}
	e.textures.Clear()
}

// Mouse callback function
func (e *Engine) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if w.GetAttrib(glfw.Focused) == glfw.True && w.GetMouseButton(glfw.MouseButtonRight) == glfw.Press {
		if e.firstMouse {
			e.lastX = xpos
			e.lastY = ypos
			e.firstMouse = false
			return
		}

		xoffset := xpos - e.lastX
		yoffset := e.lastY - ypos // Reversed since y-coordinates go from bottom to top
		e.lastX = xpos
		e.lastY = ypos

		e.Camera.ProcessMouseMovement(float32(xoffset), float32(yoffset), true)
	} else {
		e.firstMouse = true
	}
}
