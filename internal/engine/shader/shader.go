// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	// ErrCompile is returned when a shader stage fails to compile.
	ErrCompile = errors.New("shader compile failed")
	// ErrLink is returned when a program fails to link.
	ErrLink = errors.New("program link failed")
	// ErrNoUniformBlock is returned when a named uniform block is not active.
	ErrNoUniformBlock = errors.New("uniform block not found")
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, log)
	}

	return program, nil
}

// LoadProgram reads a vertex and fragment shader pair from fsys and
// compiles them.
func LoadProgram(fsys fs.FS, vertexPath, fragmentPath string) (uint32, error) {
	vert, err := fs.ReadFile(fsys, vertexPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", vertexPath, err)
	}
	frag, err := fs.ReadFile(fsys, fragmentPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", fragmentPath, err)
	}

	program, err := CompileProgram(string(vert), string(frag))
	if err != nil {
		return 0, fmt.Errorf("%s + %s: %w", vertexPath, fragmentPath, err)
	}
	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", ErrCompile, name, log)
	}

	return shader, nil
}

// infoLog reads a driver log of logLen bytes, trimming the trailing NUL.
func infoLog(logLen int32, read func(buf *uint8)) string {
	if logLen <= 0 {
		return "(no log)"
	}
	buf := make([]byte, logLen)
	read(&buf[0])
	if buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf)
}

// GetUniform returns the uniform location for the given name.
// Returns -1 if the uniform is not found or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// MustGetUniform returns the uniform location for the given name.
// Panics if the uniform is not found (useful for required uniforms).
func MustGetUniform(program uint32, name string) int32 {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		panic(fmt.Sprintf("uniform %q not found in program %d", name, program))
	}
	return loc
}

// BindUniformBlock attaches the named uniform block of program to a
// uniform buffer binding point.
func BindUniformBlock(program uint32, name string, binding uint32) error {
	index := gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		return fmt.Errorf("%w: %q in program %d", ErrNoUniformBlock, name, program)
	}
	gl.UniformBlockBinding(program, index, binding)
	return nil
}
