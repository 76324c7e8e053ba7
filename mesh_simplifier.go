package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/mogaika/mesh_simplifier/config"
	"github.com/mogaika/mesh_simplifier/optscript"
	"github.com/mogaika/mesh_simplifier/simplify"
	"github.com/mogaika/mesh_simplifier/web"
)

func main() {
	var addr, cfgPath, opts string
	var verbose, version bool
	flag.StringVar(&addr, "i", "", "Address of server (overrides config)")
	flag.StringVar(&cfgPath, "cfg", "", "Path to yaml config file")
	flag.StringVar(&opts, "opts", "", "Default simplification options, e.g. 'ratio=0.5 uv_weight=1 lock_border'")
	flag.BoolVar(&verbose, "v", false, "Dump incoming requests")
	flag.BoolVar(&version, "version", false, "Print version and exit")
	flag.Parse()

	if version {
		fmt.Println(config.Version)
		return
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if verbose {
		cfg.Verbose = true
	}
	if opts != "" {
		cfg.DefaultOptions = opts
	}

	defaults := simplify.Options{}
	if cfg.DefaultOptions != "" {
		var err error
		if defaults, err = optscript.ParseOptions(cfg.DefaultOptions, defaults); err != nil {
			log.Fatal(err)
		}
	}

	if err := web.StartServer(cfg, defaults); err != nil {
		log.Fatal(err)
	}
}
