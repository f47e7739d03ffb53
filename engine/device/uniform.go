package device

import "fmt"

// UniformType is the shader-side type of a uniform value.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
	UniformInt
	UniformUint
	UniformFloatArray
)

var uniformTypeNames = [...]string{
	UniformFloat:      "float",
	UniformVec2:       "vec2",
	UniformVec3:       "vec3",
	UniformVec4:       "vec4",
	UniformMat4:       "mat4",
	UniformInt:        "int",
	UniformUint:       "uint",
	UniformFloatArray: "float[]",
}

// String returns the GLSL spelling of the type.
func (t UniformType) String() string {
	if int(t) < len(uniformTypeNames) {
		return uniformTypeNames[t]
	}
	return fmt.Sprintf("UniformType(%d)", t)
}

// UniformValue is a typed uniform payload. Float types use F, integer types use I.
type UniformValue struct {
	Type UniformType
	F    []float32
	I    int32
}

func Float(v float32) UniformValue { return UniformValue{Type: UniformFloat, F: []float32{v}} }

func Vec2(x, y float32) UniformValue { return UniformValue{Type: UniformVec2, F: []float32{x, y}} }

func Vec3(v [3]float32) UniformValue { return UniformValue{Type: UniformVec3, F: v[:]} }

func Vec4(v [4]float32) UniformValue { return UniformValue{Type: UniformVec4, F: v[:]} }

func Mat4(m [16]float32) UniformValue { return UniformValue{Type: UniformMat4, F: m[:]} }

func Int(v int32) UniformValue { return UniformValue{Type: UniformInt, I: v} }

func Uint(v uint32) UniformValue { return UniformValue{Type: UniformUint, I: int32(v)} }

func FloatArray(v []float32) UniformValue {
	return UniformValue{Type: UniformFloatArray, F: append([]float32(nil), v...)}
}

// String formats the value for call dumps.
func (u UniformValue) String() string {
	switch u.Type {
	case UniformInt, UniformUint:
		return fmt.Sprintf("%s(%d)", u.Type, u.I)
	default:
		return fmt.Sprintf("%s%v", u.Type, u.F)
	}
}
