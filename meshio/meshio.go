// Package meshio writes road meshes in the OBJ and SMF text formats.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"honnef.co/go/arcroad"
)

// ErrIndex is returned for faces that refer to vertices that don't exist.
var ErrIndex = errors.New("meshio: vertex index out of range")

func checkFaces(nverts int, faces [][3]uint32) error {
	for i, f := range faces {
		for _, idx := range f {
			if int(idx) >= nverts {
				return fmt.Errorf("%w: face %d refers to vertex %d of %d", ErrIndex, i, idx, nverts)
			}
		}
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteOBJ writes an OBJ object called name with the given material,
// consisting of positions, normals and texture coordinates for every vertex
// and one triangle per face. Face indices are zero-based; OBJ's one-based
// indices are produced on output.
func WriteOBJ(w io.Writer, name, material string, verts []arcroad.Vertex, faces [][3]uint32) error {
	if err := checkFaces(len(verts), faces); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	if material != "" {
		fmt.Fprintf(bw, "usemtl %s\n", material)
	}
	for _, v := range verts {
		p := v.Position
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
	}
	for _, v := range verts {
		n := v.Normal
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n[0]), ftoa(n[1]), ftoa(n[2]))
	}
	for _, v := range verts {
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(v.TexCoord[0]), ftoa(v.TexCoord[1]))
	}
	for _, f := range faces {
		a, b, c := f[0]+1, f[1]+1, f[2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return bw.Flush()
}

// WriteSMF writes vertex positions and triangles in the Simple Model Format.
func WriteSMF(w io.Writer, verts []arcroad.Vertex, faces [][3]uint32) error {
	if err := checkFaces(len(verts), faces); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, v := range verts {
		p := v.Position
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
	}
	for _, f := range faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}

// WriteMeshOBJ writes m with [WriteOBJ].
func WriteMeshOBJ(w io.Writer, name, material string, m *arcroad.Mesh) error {
	return WriteOBJ(w, name, material, m.Vertices, m.Faces)
}

// WriteMeshSMF writes m with [WriteSMF].
func WriteMeshSMF(w io.Writer, m *arcroad.Mesh) error {
	return WriteSMF(w, m.Vertices, m.Faces)
}
