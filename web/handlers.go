package web

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/mesh_simplifier/config"
	"github.com/mogaika/mesh_simplifier/optscript"
	"github.com/mogaika/mesh_simplifier/simplify"
	"github.com/mogaika/mesh_simplifier/status"
	"github.com/mogaika/mesh_simplifier/utils"
	"github.com/mogaika/mesh_simplifier/webutils"
)

var requestHandler = simplify.NewHandler(nil)

// meshPayload mirrors the buffer layout of the simplify call: flat float
// buffers with byte strides. Zero strides mean tightly packed.
type meshPayload struct {
	Indices        []uint32  `json:"indices"`
	Positions      []float32 `json:"positions"`
	VertexCount    int       `json:"vertex_count"`
	PositionStride int       `json:"position_stride"`
	UVs            []float32 `json:"uvs"`
	UVStride       int       `json:"uv_stride"`
}

func (p *meshPayload) toMesh() simplify.Mesh {
	m := simplify.Mesh{
		Indices:        p.Indices,
		Positions:      p.Positions,
		VertexCount:    p.VertexCount,
		PositionStride: p.PositionStride,
		UVs:            p.UVs,
		UVStride:       p.UVStride,
	}
	if m.PositionStride == 0 {
		m.PositionStride = 12
	}
	if m.UVStride == 0 {
		m.UVStride = 8
	}
	return m
}

type simplifyRequest struct {
	Mesh    meshPayload      `json:"mesh"`
	Options simplify.Options `json:"options"`
}

type simplifyResponse struct {
	simplify.Result
	Reason  string   `json:"reason,omitempty"`
	Indices []uint32 `json:"indices,omitempty"`
}

// requestOptions layers the server defaults, the request body and the
// ?opts= query override.
func requestOptions(r *http.Request, body simplify.Options) (simplify.Options, error) {
	opts := body
	if opts == (simplify.Options{}) {
		opts = serverDefaults
	}
	if script := r.URL.Query().Get("opts"); script != "" {
		return optscript.ParseOptions(script, opts)
	}
	return opts, nil
}

func runSimplify(r *http.Request) (*simplifyResponse, error) {
	var req simplifyRequest
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		return nil, err
	}

	opts, err := requestOptions(r, req.Options)
	if err != nil {
		return nil, err
	}

	job := jobNames.Next()
	mesh := req.Mesh.toMesh()
	if serverConfig.Verbose {
		log.Printf("[web] Job %q options: %v", job, utils.SDump(opts))
	}
	status.Progress(job, 0, "simplifying %v indices", len(mesh.Indices))

	destination := make([]uint32, len(mesh.Indices))
	result := requestHandler.Simplify(destination, mesh, opts)

	response := &simplifyResponse{Result: result}
	if result.Ok {
		response.Indices = destination[:result.IndexCount]
		status.Info(job, "simplified %v -> %v indices (error %v)",
			len(mesh.Indices), result.IndexCount, result.Error)
		log.Printf("[web] Job %q: %v -> %v indices", job, len(mesh.Indices), result.IndexCount)
	} else {
		response.Reason = result.Reason.String()
		status.Error(job, "simplification failed: %v", result.Message)
		log.Printf("[web] Job %q failed: %v (%v)", job, result.Message, result.Reason)
	}
	return response, nil
}

func HandlerSimplify(w http.ResponseWriter, r *http.Request) {
	response, err := runSimplify(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, response)
}

type vertexCacheRequest struct {
	Indices     []uint32 `json:"indices"`
	VertexCount int      `json:"vertex_count"`
}

type reorderResponse struct {
	Indices []uint32 `json:"indices"`
}

func HandlerOptimizeVertexCache(w http.ResponseWriter, r *http.Request) {
	var req vertexCacheRequest
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if req.Indices == nil {
		webutils.WriteError(w, errors.Errorf("Missing index buffer"))
		return
	}

	destination := make([]uint32, len(req.Indices))
	requestHandler.OptimizeVertexCache(destination, req.Indices, req.VertexCount)
	webutils.WriteJson(w, &reorderResponse{Indices: destination})
}

type overdrawRequest struct {
	Mesh      meshPayload `json:"mesh"`
	Threshold float32     `json:"threshold"`
}

func HandlerOptimizeOverdraw(w http.ResponseWriter, r *http.Request) {
	var req overdrawRequest
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if req.Mesh.Indices == nil || req.Mesh.Positions == nil {
		webutils.WriteError(w, errors.Errorf("Missing index or position buffer"))
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = serverConfig.OverdrawThreshold
	}

	mesh := req.Mesh.toMesh()
	destination := make([]uint32, len(mesh.Indices))
	requestHandler.OptimizeOverdraw(destination, mesh.Indices, mesh.Positions,
		mesh.VertexCount, mesh.PositionStride, threshold)
	webutils.WriteJson(w, &reorderResponse{Indices: destination})
}

func HandlerVersion(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, map[string]string{"version": config.Version})
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
