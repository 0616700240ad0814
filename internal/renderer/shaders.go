package renderer

import (
	"errors"
	"fmt"
	"strings"

	"Ember3D/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	Name           string
	vertexSource   string
	fragmentSource string
	program        uint32
	uniforms       *UniformCache
}

func NewEquirectangularShader() *Shader {
	return &Shader{Name: "equirectangular", vertexSource: cubemapVertexShaderSource, fragmentSource: equirectangularFragmentShaderSource}
}

func NewIrradianceShader() *Shader {
	return &Shader{Name: "irradiance", vertexSource: cubemapVertexShaderSource, fragmentSource: irradianceFragmentShaderSource}
}

func NewPrefilterShader() *Shader {
	return &Shader{Name: "prefilter", vertexSource: cubemapVertexShaderSource, fragmentSource: prefilterFragmentShaderSource}
}

func NewSkyboxShader() *Shader {
	return &Shader{Name: "skybox", vertexSource: skyboxVertexShaderSource, fragmentSource: skyboxFragmentShaderSource}
}

func NewSkinnedPBRShader() *Shader {
	return &Shader{Name: "skinned-pbr", vertexSource: skinningVertexShaderSource, fragmentSource: pbrFragmentShaderSource}
}

// Compile builds and links the program. A GL context must be current.
func (shader *Shader) Compile() error {
	vertex, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s vertex shader: %w", shader.Name, err)
	}
	fragment, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return fmt.Errorf("%s fragment shader: %w", shader.Name, err)
	}
	program, err := GenShaderProgram(vertex, fragment)
	if err != nil {
		return fmt.Errorf("%s program: %w", shader.Name, err)
	}

	shader.program = program
	shader.uniforms = NewUniformCache(program)
	logger.Log.Debug("Shader program linked", zap.String("shader", shader.Name), zap.Uint32("program", program))
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) SetVec3(name string, value mgl32.Vec3) {
	shader.uniforms.SetVec3(name, value.X(), value.Y(), value.Z())
}

func (shader *Shader) SetFloat(name string, value float32) {
	shader.uniforms.SetFloat(name, value)
}

func (shader *Shader) SetInt(name string, value int32) {
	shader.uniforms.SetInt(name, value)
}

func (shader *Shader) SetMat4(name string, value mgl32.Mat4) {
	shader.uniforms.SetMat4(name, value)
}

// Delete frees the program.
func (shader *Shader) Delete() {
	if shader.program == 0 {
		return
	}
	gl.DeleteProgram(shader.program)
	shader.program = 0
	shader.uniforms.Clear()
}

var errCompile = errors.New("shader compilation failed")

func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shaderType", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("%w: %s", errCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}
