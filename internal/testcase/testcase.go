// Package testcase builds the two artifacts the harness collaborator
// consumes per generated module (§6 "Exposed to the harness collaborator"):
// a ShaderMetadata descriptor of the module's resources, and an inputs JSON
// object of randomly generated bytes for every initialized resource.
package testcase

import (
	"encoding/json"
	"math/rand"
	"strconv"

	"github.com/shadefuzz/shadefuzz/internal/ast"
)

// ResourceKind is the storage class a resource binding lives in, as seen
// from the harness (only the two host-visible classes matter here).
type ResourceKind string

const (
	KindStorage ResourceKind = "storage"
	KindUniform ResourceKind = "uniform"
)

// Resource describes one @group/@binding global variable.
type Resource struct {
	Kind    ResourceKind `json:"kind"`
	Group   int32        `json:"group"`
	Binding int32        `json:"binding"`
	Size    uint32       `json:"size"`
	Init    []byte       `json:"init,omitempty"`
}

// ShaderMetadata is the "ShaderMetadata" JSON comment written as the first
// line of every emitted shader (§6).
type ShaderMetadata struct {
	Resources []Resource `json:"resources"`
}

// BuildMetadata walks m's global vars and records one Resource per
// uniform/storage binding, in declaration order.
func BuildMetadata(m *ast.Module) ShaderMetadata {
	var resources []Resource
	for _, v := range m.Vars {
		if v.Qualifier == nil {
			continue
		}
		var kind ResourceKind
		switch v.Qualifier.StorageClass {
		case ast.Storage:
			kind = KindStorage
		case ast.Uniform:
			kind = KindUniform
		default:
			continue
		}
		group, binding := int32(0), int32(0)
		if v.Attr.Group != nil {
			group = *v.Attr.Group
		}
		if v.Attr.Binding != nil {
			binding = *v.Attr.Binding
		}
		resources = append(resources, Resource{
			Kind:    kind,
			Group:   group,
			Binding: binding,
			Size:    sizeOf(v.Type),
		})
	}
	return ShaderMetadata{Resources: resources}
}

// GenInputs produces an inputs JSON object keyed by "group:binding", one
// random byte slice per resource in md sized to its Size, for shipping
// alongside the shader source to drive its uniform/storage buffers.
func GenInputs(rng *rand.Rand, md ShaderMetadata) map[string][]byte {
	inputs := make(map[string][]byte, len(md.Resources))
	for _, r := range md.Resources {
		buf := make([]byte, r.Size)
		rng.Read(buf)
		inputs[key(r.Group, r.Binding)] = buf
	}
	return inputs
}

// MarshalInputs renders the inputs map as the base64-encoded JSON object
// the harness expects (json.Marshal base64-encodes []byte fields).
func MarshalInputs(inputs map[string][]byte) ([]byte, error) {
	return json.Marshal(inputs)
}

func key(group, binding int32) string {
	return strconv.Itoa(int(group)) + ":" + strconv.Itoa(int(binding))
}

// sizeOf computes a WGSL host-shareable layout size for ty: 4 bytes per
// scalar, a vec3 rounded up to 16 bytes like every std430 vector, array
// stride times length, and a struct as the sum of its (recursively sized)
// members. This is an approximation good enough for generating
// correctly-sized random input bytes, not a full alignment/padding
// implementation of the std430 layout algorithm.
func sizeOf(ty ast.DataType) uint32 {
	switch ty.Kind {
	case ast.KindScalar:
		return 4
	case ast.KindVector:
		switch ty.VecLen {
		case 2:
			return 8
		default:
			return 16 // vec3 and vec4 both occupy 16 bytes under std430
		}
	case ast.KindArray:
		elemSize := sizeOf(*ty.Elem)
		n := ty.ArrayLen
		if !ty.ArrayLenSet {
			n = 1
		}
		return elemSize * n
	case ast.KindStruct:
		var total uint32
		for _, m := range ty.Struct.Members {
			total += sizeOf(m.Type)
		}
		return total
	default:
		return 4
	}
}
