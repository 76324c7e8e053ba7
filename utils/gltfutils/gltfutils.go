package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// BuildTriangleMesh assembles a single-primitive glTF document from a
// triangle list. uvs may be nil.
func BuildTriangleMesh(name string, positions [][3]float32, uvs [][2]float32, indices []uint32) *gltf.Document {
	doc := gltf.NewDocument()

	positionAccessor := modeler.WritePosition(doc, positions)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	attributes := map[string]uint32{
		"POSITION": positionAccessor,
	}
	if uvs != nil {
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{
			&gltf.Primitive{
				Indices:    &indicesAccessor,
				Attributes: attributes,
			},
		},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})

	return doc
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	for iNode := range doc.Nodes {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
