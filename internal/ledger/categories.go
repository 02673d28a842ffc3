package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"caja/internal/core"
	"caja/internal/log"
)

// CategoryConfig returns the stored category configuration, or the defaults
// when nothing is stored yet or the stored value is not parseable.
func (s *Service) CategoryConfig(ctx context.Context) (core.CategoryConfig, error) {
	raw, ok, err := s.store.Get(ctx, KeyCategoryConfig)
	if err != nil {
		return core.CategoryConfig{}, fmt.Errorf("read %s: %w", KeyCategoryConfig, err)
	}
	if !ok || len(raw) == 0 {
		return core.DefaultCategoryConfig(), nil
	}

	var config core.CategoryConfig
	if err := json.Unmarshal(raw, &config); err != nil {
		s.logger.WarnContext(ctx, "Malformed category config, using defaults",
			log.FieldStorageKey, KeyCategoryConfig,
			log.FieldError, err.Error())
		return core.DefaultCategoryConfig(), nil
	}
	return config, nil
}

// SaveCategoryConfig persists the configuration whole and broadcasts the
// change. Category uniqueness is the caller's concern.
func (s *Service) SaveCategoryConfig(ctx context.Context, config core.CategoryConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyCategoryConfig, err)
	}
	if err := s.store.Set(ctx, KeyCategoryConfig, raw); err != nil {
		return fmt.Errorf("write %s: %w", KeyCategoryConfig, err)
	}

	s.logger.InfoContext(ctx, "Category config saved",
		log.FieldOperation, log.OpUpdate,
		"inflow_categories", len(config.InflowCategories),
		"outflow_categories", len(config.OutflowCategories))

	s.publish(KeyCategoryConfig)
	return nil
}
