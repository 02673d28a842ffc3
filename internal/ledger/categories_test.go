package ledger

import (
	"context"
	"reflect"
	"testing"

	"caja/internal/core"
)

func TestCategoryConfigDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		service, _ := newTestService(t)
		config, err := service.CategoryConfig(ctx)
		if err != nil {
			t.Fatalf("CategoryConfig() error = %v", err)
		}
		if !reflect.DeepEqual(config, core.DefaultCategoryConfig()) {
			t.Errorf("CategoryConfig() = %+v, want defaults", config)
		}
	})

	t.Run("malformed stored value", func(t *testing.T) {
		service, store := newTestService(t)
		if err := store.Set(ctx, KeyCategoryConfig, []byte("][")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		config, err := service.CategoryConfig(ctx)
		if err != nil {
			t.Fatalf("CategoryConfig() error = %v", err)
		}
		if !reflect.DeepEqual(config, core.DefaultCategoryConfig()) {
			t.Errorf("CategoryConfig() = %+v, want defaults", config)
		}
	})
}

func TestSaveCategoryConfig(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	custom := core.CategoryConfig{
		Enabled:           true,
		InflowCategories:  []string{"Ventas", "Propinas"},
		OutflowCategories: []string{"Hielo"},
	}
	if err := service.SaveCategoryConfig(ctx, custom); err != nil {
		t.Fatalf("SaveCategoryConfig() error = %v", err)
	}

	got, err := service.CategoryConfig(ctx)
	if err != nil {
		t.Fatalf("CategoryConfig() error = %v", err)
	}
	if !reflect.DeepEqual(got, custom) {
		t.Errorf("CategoryConfig() = %+v, want %+v", got, custom)
	}
}

func TestSaveCategoryConfigPublishesChange(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	events := 0
	unsubscribe := service.Notifier().Subscribe(func(Change) { events++ }, KeyCategoryConfig)
	defer unsubscribe()

	if err := service.SaveCategoryConfig(ctx, core.DefaultCategoryConfig()); err != nil {
		t.Fatalf("SaveCategoryConfig() error = %v", err)
	}
	if events != 1 {
		t.Errorf("events = %d, want 1", events)
	}
}
