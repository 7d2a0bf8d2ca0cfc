package fetchers

import (
	"gridmix/internal/config"
	"gridmix/internal/logger"
	"gridmix/internal/mocks"
)

// NewSource returns the fixture service in mockup mode and the live Ember
// fetcher otherwise
func NewSource(cfg *config.Config) Source {
	if cfg.MockupMode {
		logger.For(logger.ComponentFetcher).Info("Mockup mode enabled", logger.Fields{"mocks_dir": cfg.MocksDir})
		return mocks.NewMockService(cfg.MocksDir)
	}
	return NewEmberFetcher(cfg.EmberBaseURL, cfg.EmberAPIKey, cfg.HTTPTimeout)
}
