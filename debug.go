package rig

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// buildStats holds timing and size metrics for one build.
// Only populated when the artboard is in debug mode.
type buildStats struct {
	buildTime time.Duration
	ordered   int
	excluded  int
	orderHash uint64
}

// passStats holds timing metrics for one update pass.
type passStats struct {
	updateTime time.Duration
	updated    int
	failed     int
}

// debugLogBuild logs build stats at debug level.
func (a *Artboard) debugLogBuild(stats buildStats) {
	if !a.debug {
		return
	}
	a.logger.Debug("build",
		zap.Duration("took", stats.buildTime),
		zap.Int("ordered", stats.ordered),
		zap.Int("excluded", stats.excluded),
		zap.String("order_hash", fmt.Sprintf("%016x", stats.orderHash)))
}

// debugLogPass logs update pass stats at debug level.
func (a *Artboard) debugLogPass(stats passStats) {
	if !a.debug {
		return
	}
	a.logger.Debug("update pass",
		zap.Duration("took", stats.updateTime),
		zap.Int("updated", stats.updated),
		zap.Int("failed", stats.failed))
}

// debugMaxHierarchyDepth is the depth past which Build warns in debug mode.
const debugMaxHierarchyDepth = 32

// debugCheckDepth warns if c sits deeper in the hierarchy than the threshold.
func (a *Artboard) debugCheckDepth(c *Component) {
	depth := 0
	for p := c; p != nil && depth <= len(a.components); p = a.Component(p.ParentID) {
		depth++
	}
	if depth > debugMaxHierarchyDepth {
		a.logger.Warn("hierarchy too deep",
			zap.String("component", c.Name),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxHierarchyDepth))
	}
}
