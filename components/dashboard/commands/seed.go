package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior. Manifests are optional
// YAML manifest paths loaded after the built-in definitions.
type SeedDashboardInput struct {
	Manifests []string
}

// SeedDashboardCommand registers definitions, providers and manifests.
type SeedDashboardCommand struct {
	registry  *dashboard.Registry
	sources   dashboard.Sources
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(registry *dashboard.Registry, sources dashboard.Sources, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		registry:  registry,
		sources:   sources,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline and reports every failure.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.registry == nil {
		return errors.New("seed command requires registry")
	}
	if err := dashboard.RegisterDefinitions(c.registry); err != nil {
		return err
	}
	var seedErr error
	for _, path := range msg.Manifests {
		if _, err := c.registry.LoadManifestFile(path); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	if err := dashboard.RegisterProviders(c.registry, c.sources); err != nil {
		seedErr = errors.Join(seedErr, err)
	}
	c.telemetry.Record(ctx, "bizdash.seed", map[string]any{
		"manifests":   len(msg.Manifests),
		"definitions": len(c.registry.Definitions()),
		"failed":      seedErr != nil,
	})
	return seedErr
}
