package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// GLTFLoader imports glTF/GLB files as prefabs.
type GLTFLoader struct {
	// CalculateNormals generates smooth normals for primitives that have none.
	CalculateNormals bool

	dev gfx.Device
	dir string
	doc *gltf.Document

	meshes    map[[2]int]gfx.Mesh
	materials map[int]*Material
	textures  map[int]gfx.Texture
}

// NewGLTFLoader creates a loader that uploads geometry and images to dev.
func NewGLTFLoader(dev gfx.Device) *GLTFLoader {
	return &GLTFLoader{dev: dev, CalculateNormals: true}
}

// LoadGLTF loads path with default options and wraps it in a prefab entity.
func LoadGLTF(dev gfx.Device, path string) (*PrefabEntity, error) {
	root, err := NewGLTFLoader(dev).Load(path)
	if err != nil {
		return nil, err
	}
	p := NewPrefab(root.Name, root)
	p.Filename = path
	return p, nil
}

// Load reads a glTF or GLB file and returns its node hierarchy under a
// root named after the file. Each mesh primitive becomes a child node.
func (l *GLTFLoader) Load(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	l.doc = doc
	l.dir = filepath.Dir(path)
	l.meshes = make(map[[2]int]gfx.Mesh)
	l.materials = make(map[int]*Material)
	l.textures = make(map[int]gfx.Texture)

	root := NewNode(filepath.Base(path))
	for _, idx := range l.rootNodes() {
		n, err := l.node(idx, 0)
		if err != nil {
			return nil, err
		}
		root.AddChild(n)
	}
	return root, nil
}

// rootNodes returns the default scene's roots, or every parentless node
// when the document has no scenes.
func (l *GLTFLoader) rootNodes() []int {
	doc := l.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

const maxNodeDepth = 64

func (l *GLTFLoader) node(idx, depth int) (*Node, error) {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	gn := l.doc.Nodes[idx]
	n := NewNode(gn.Name)
	n.Local = nodeMatrix(gn)

	if gn.Mesh != nil {
		if err := l.attachMesh(n, *gn.Mesh); err != nil {
			return nil, fmt.Errorf("node %q: %w", gn.Name, err)
		}
	}
	for _, c := range gn.Children {
		child, err := l.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func nodeMatrix(n *gltf.Node) math3d.Mat4 {
	var zero [16]float64
	if n.Matrix != zero && n.Matrix != identity16 {
		return math3d.Mat4(n.Matrix)
	}
	t := math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	r := math3d.Identity()
	if q := n.Rotation; q != [4]float64{} {
		r = math3d.FromQuat(math3d.V4(q[0], q[1], q[2], q[3]))
	}
	s := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if s.IsZero() {
		s = math3d.Splat3(1)
	}
	return math3d.TRS(t, r, s)
}

var identity16 = [16]float64(math3d.Identity())

func (l *GLTFLoader) attachMesh(n *Node, meshIdx int) error {
	if meshIdx < 0 || meshIdx >= len(l.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	m := l.doc.Meshes[meshIdx]
	for i, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		mesh, err := l.primitive(meshIdx, i, prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		if mesh == nil {
			continue
		}
		child := NewNode(fmt.Sprintf("%s/%d", m.Name, i))
		child.Mesh = mesh
		child.Material = l.material(prim.Material)
		n.AddChild(child)
	}
	return nil
}

func (l *GLTFLoader) primitive(meshIdx, primIdx int, prim *gltf.Primitive) (gfx.Mesh, error) {
	key := [2]int{meshIdx, primIdx}
	if m, ok := l.meshes[key]; ok {
		return m, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(l.doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(l.doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	var uvs []math3d.Vec2
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(l.doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	data := &gfx.MeshData{Vertices: make([]gfx.Vertex, len(positions))}
	for i, p := range positions {
		v := gfx.Vertex{Position: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// glTF V runs top-down, textures sample bottom-up
			v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
		}
		data.Vertices[i] = v
	}

	if prim.Indices != nil {
		data.Indices, err = readIndices(l.doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		data.Indices = make([]int, len(positions)/3*3)
		for i := range data.Indices {
			data.Indices[i] = i
		}
	}
	if l.CalculateNormals && !data.HasNormals() {
		data.CalculateSmoothNormals()
	}

	mesh, err := l.dev.NewMesh(data)
	if err != nil {
		return nil, err
	}
	l.meshes[key] = mesh
	return mesh, nil
}

func (l *GLTFLoader) material(idx *int) *Material {
	if idx == nil || *idx < 0 || *idx >= len(l.doc.Materials) {
		return NewMaterial("default")
	}
	if m, ok := l.materials[*idx]; ok {
		return m
	}
	gm := l.doc.Materials[*idx]
	m := NewMaterial(gm.Name)
	m.TwoSided = gm.DoubleSided
	switch gm.AlphaMode {
	case gltf.AlphaMask:
		m.AlphaMode = AlphaMask
	case gltf.AlphaBlend:
		m.AlphaMode = AlphaBlend
	}
	if gm.AlphaCutoff != nil {
		m.AlphaCutoff = *gm.AlphaCutoff
	}
	m.Emissive = math3d.V3(gm.EmissiveFactor[0], gm.EmissiveFactor[1], gm.EmissiveFactor[2])

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if c := pbr.BaseColorFactor; c != nil {
			m.Color = math3d.V4(c[0], c[1], c[2], c[3])
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			m.Textures[ChannelAlbedo] = l.texture(ti.Index)
		}
		if ti := pbr.MetallicRoughnessTexture; ti != nil {
			m.Textures[ChannelMetallicRoughness] = l.texture(ti.Index)
		}
	}
	if ti := gm.EmissiveTexture; ti != nil {
		m.Textures[ChannelEmissive] = l.texture(ti.Index)
	}
	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		m.Textures[ChannelNormal] = l.texture(*nt.Index)
	}
	l.materials[*idx] = m
	return m
}

// texture decodes the image behind a glTF texture. Undecodable images
// yield nil so the renderer falls back to white.
func (l *GLTFLoader) texture(idx int) gfx.Texture {
	if t, ok := l.textures[idx]; ok {
		return t
	}
	var tex gfx.Texture
	if idx >= 0 && idx < len(l.doc.Textures) {
		if src := l.doc.Textures[idx].Source; src != nil {
			if img, err := l.image(*src); err == nil {
				tex = l.dev.NewTexture(img)
			}
		}
	}
	l.textures[idx] = tex
	return tex
}

func (l *GLTFLoader) image(idx int) (image.Image, error) {
	if idx < 0 || idx >= len(l.doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", idx)
	}
	gi := l.doc.Images[idx]
	var data []byte
	switch {
	case gi.BufferView != nil:
		bv := l.doc.BufferViews[*gi.BufferView]
		buf := l.doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer view out of range", idx)
		}
		data = buf.Data[bv.ByteOffset:end]
	case gi.URI != "":
		b, err := os.ReadFile(filepath.Join(l.dir, gi.URI))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		data = b
	default:
		return nil, fmt.Errorf("image %d has no data", idx)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", idx, err)
	}
	return img, nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := lookupAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor, err := lookupAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

// readIndices reads index data from a scalar accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := lookupAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}
	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}
	buf, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range result {
		off := start + i*stride
		switch size {
		case 1:
			result[i] = int(buf[off])
		case 2:
			result[i] = int(uint16(buf[off]) | uint16(buf[off+1])<<8)
		case 4:
			result[i] = int(readUint32(buf[off:]))
		}
	}
	return result, nil
}

func lookupAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

func readFloats(doc *gltf.Document, accessor *gltf.Accessor, n int) ([]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type: %v", accessor.ComponentType)
	}
	buf, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}
	out := make([]float64, accessor.Count*n)
	for i := range accessor.Count {
		off := start + i*stride
		for j := range n {
			out[i*n+j] = float64(math.Float32frombits(readUint32(buf[off+j*4:])))
		}
	}
	return out, nil
}

// accessorBytes resolves the backing buffer of an accessor and checks that
// every element of elemSize bytes lies inside it.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) (buf []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bv := doc.BufferViews[*accessor.BufferView]
	buf = doc.Buffers[bv.Buffer].Data
	if buf == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}
	start = bv.ByteOffset + accessor.ByteOffset
	stride = bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 && start+(accessor.Count-1)*stride+elemSize > len(buf) {
		return nil, 0, 0, fmt.Errorf("accessor exceeds buffer (%d bytes)", len(buf))
	}
	return buf, start, stride, nil
}

func readUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
