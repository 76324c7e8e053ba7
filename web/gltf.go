package web

import (
	"bytes"
	"net/http"

	"github.com/pkg/errors"

	"github.com/mogaika/mesh_simplifier/utils"
	"github.com/mogaika/mesh_simplifier/utils/gltfutils"
	"github.com/mogaika/mesh_simplifier/webutils"
)

// HandlerDumpSimplifiedGLTF runs a simplification request and streams the
// simplified mesh back as a binary glTF attachment instead of JSON.
func HandlerDumpSimplifiedGLTF(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}

	opts, err := requestOptions(r, req.Options)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	mesh := req.Mesh.toMesh()
	destination := make([]uint32, len(mesh.Indices))
	result := requestHandler.Simplify(destination, mesh, opts)
	if !result.Ok {
		webutils.WriteError(w, errors.Errorf("Simplification failed: %v", result.Message))
		return
	}

	positions, err := utils.DecodeVec3Array(mesh.Positions, mesh.VertexCount, mesh.PositionStride)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to decode positions"))
		return
	}

	var uvs [][2]float32
	if mesh.UVs != nil {
		uvs, err = utils.DecodeVec2Array(mesh.UVs, mesh.VertexCount, mesh.UVStride)
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to decode uvs"))
			return
		}
	}

	name := jobNames.Next()
	doc := gltfutils.BuildTriangleMesh(name, positions, uvs, destination[:result.IndexCount])

	var buf bytes.Buffer
	if err := gltfutils.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to encode gltf"))
		return
	}
	webutils.WriteFile(w, &buf, name+".glb")
}
