package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/approuter/internal/cli/config"
	"github.com/leapstack-labs/approuter/internal/store"
)

// openStore opens the app store configured in ctx.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open app store: %w", err)
	}
	return s, nil
}
