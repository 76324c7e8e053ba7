package web

import (
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

// jobNameGenerator hands out unique human-readable names for accepted
// requests, used in logs and status broadcasts.
type jobNameGenerator struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func (g *jobNameGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used == nil {
		g.used = make(map[string]struct{})
		randomdata.CustomRand(rand.New(rand.NewSource(0)))
	}
	for {
		name := randomdata.SillyName()
		if _, exists := g.used[name]; !exists {
			g.used[name] = struct{}{}
			return name
		}
	}
}

var jobNames jobNameGenerator
