package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/mesh_simplifier/config"
	"github.com/mogaika/mesh_simplifier/simplify"
)

var serverConfig config.Config
var serverDefaults simplify.Options

// NewRouter builds the service routes; split out of StartServer so tests
// can drive the mux directly.
func NewRouter(cfg config.Config, defaults simplify.Options) *mux.Router {
	serverConfig = cfg
	serverDefaults = defaults

	r := mux.NewRouter()
	r.HandleFunc("/json/simplify", HandlerSimplify)
	r.HandleFunc("/json/optimize/vertexcache", HandlerOptimizeVertexCache)
	r.HandleFunc("/json/optimize/overdraw", HandlerOptimizeOverdraw)
	r.HandleFunc("/json/version", HandlerVersion)
	r.HandleFunc("/dump/simplify/gltf", HandlerDumpSimplifiedGLTF)
	r.HandleFunc("/ws/status", HandlerStatusWs)
	return r
}

func StartServer(cfg config.Config, defaults simplify.Options) error {
	r := NewRouter(cfg, defaults)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", cfg.Addr)

	return http.ListenAndServe(cfg.Addr, h)
}
