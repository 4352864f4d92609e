package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	logger "github.com/prevet-io/prevet/logging"
	"github.com/prevet-io/prevet/pdp/engine"
)

// LoadFromConfig registers every declaration listed under the "policies"
// config key.
func (c *Catalog) LoadFromConfig() error {
	var decls []Declaration
	if err := viper.UnmarshalKey("policies", &decls); err != nil {
		return fmt.Errorf("failed to read policy declarations from config: %w", err)
	}

	for _, decl := range decls {
		if err := c.Register(decl); err != nil {
			return err
		}
	}
	logger.Info("Loaded policy declarations from config", zap.Int("count", len(decls)))
	return nil
}

// Warmup pre-resolves every registered method-level target and parse-checks
// every type-level declaration so the first real checks hit a warm attribute
// cache. A parse failure for any declaration aborts the warmup: a malformed
// policy is a configuration defect and should surface at startup rather than
// on the first affected call.
func (c *Catalog) Warmup(ctx context.Context, registry *engine.AttributeRegistry) error {
	g, _ := errgroup.WithContext(ctx)
	for _, target := range c.Targets() {
		target := target
		g.Go(func() error {
			_, err := registry.Get(target)
			return err
		})
	}
	for _, decl := range c.Declarations() {
		if decl.Method != "" {
			continue
		}
		decl := decl
		g.Go(func() error {
			return registry.Verify(decl.Type, decl.Expression)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Attribute cache warmed up", zap.Int("declarations", len(c.Declarations())))
	return nil
}
