package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/storage"
)

func sampleInvocation(id string, cmd domain.Command, created time.Time) *domain.Invocation {
	return &domain.Invocation{
		ID:             id,
		Command:        cmd,
		RootDir:        "/app",
		Status:         domain.InvocationSucceeded,
		Duration:       1500 * time.Millisecond,
		CreatedAt:      created,
		OriginalConfig: map[string]any{"swc": true},
		Config:         map[string]any{"swc": true, "minify": "swc"},
		Tasks: []domain.Task{{
			Name: "web",
			Config: &domain.ChainConfig{
				Name:   "web",
				Mode:   domain.ModeProduction,
				Define: map[string]string{"process.env.NODE_ENV": `"production"`},
				Resolve: domain.Resolve{
					Modules: []string{"node_modules", "/app/node_modules"},
				},
			},
		}},
	}
}

func TestSQLiteStore_RecordInvocation(t *testing.T) {
	// Use in-memory SQLite with shared cache for testing
	store, err := New("file:memdb1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	inv := sampleInvocation("inv-1", domain.CommandBuild, time.Now().UTC())
	if err := store.RecordInvocation(context.Background(), inv); err != nil {
		t.Fatalf("RecordInvocation() error = %v", err)
	}

	retrieved, err := store.GetInvocation(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("GetInvocation() error = %v", err)
	}

	if retrieved.Command != inv.Command {
		t.Errorf("Command = %v, want %v", retrieved.Command, inv.Command)
	}
	if retrieved.Status != domain.InvocationSucceeded {
		t.Errorf("Status = %v, want succeeded", retrieved.Status)
	}
	if retrieved.Duration != inv.Duration {
		t.Errorf("Duration = %v, want %v", retrieved.Duration, inv.Duration)
	}
	if retrieved.Config["minify"] != "swc" {
		t.Errorf("Config = %v", retrieved.Config)
	}
	if len(retrieved.Tasks) != 1 {
		t.Fatalf("Tasks count = %d, want 1", len(retrieved.Tasks))
	}
	got := retrieved.Tasks[0].Config
	if got.Mode != domain.ModeProduction {
		t.Errorf("task mode = %v", got.Mode)
	}
	if !reflect.DeepEqual(got.Resolve.Modules, inv.Tasks[0].Config.Resolve.Modules) {
		t.Errorf("resolve.modules = %v", got.Resolve.Modules)
	}
	if !reflect.DeepEqual(got.Define, inv.Tasks[0].Config.Define) {
		t.Errorf("define = %v", got.Define)
	}
}

func TestSQLiteStore_FailedInvocation(t *testing.T) {
	store, err := New("file:memdb2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	inv := &domain.Invocation{
		ID:      "failed-1",
		Command: domain.CommandStart,
		RootDir: "/app",
		Status:  domain.InvocationFailed,
		Error:   "pipeline rule user-config: bad outputDir",
	}
	if err := store.RecordInvocation(context.Background(), inv); err != nil {
		t.Fatalf("RecordInvocation() error = %v", err)
	}

	retrieved, err := store.GetInvocation(context.Background(), "failed-1")
	if err != nil {
		t.Fatalf("GetInvocation() error = %v", err)
	}
	if retrieved.Error != inv.Error {
		t.Errorf("Error = %q, want %q", retrieved.Error, inv.Error)
	}
	if retrieved.Config != nil || len(retrieved.Tasks) != 0 {
		t.Errorf("expected no config or tasks, got %v / %v", retrieved.Config, retrieved.Tasks)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store, err := New("file:memdb3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	_, err = store.GetInvocation(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_ListInvocations(t *testing.T) {
	store, err := New("file:memdb4?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, cmd := range []domain.Command{domain.CommandStart, domain.CommandBuild, domain.CommandBuild} {
		inv := sampleInvocation(string(rune('a'+i)), cmd, base.Add(time.Duration(i)*time.Minute))
		if err := store.RecordInvocation(context.Background(), inv); err != nil {
			t.Fatalf("RecordInvocation() error = %v", err)
		}
	}

	all, err := store.ListInvocations(context.Background(), storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListInvocations() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d invocations, want 3", len(all))
	}
	if all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = %s,%s,%s; want newest first", all[0].ID, all[1].ID, all[2].ID)
	}
	if all[0].Tasks != 1 {
		t.Errorf("task count = %d, want 1", all[0].Tasks)
	}

	builds, err := store.ListInvocations(context.Background(), storage.ListOptions{Command: domain.CommandBuild, Limit: 1})
	if err != nil {
		t.Fatalf("ListInvocations() error = %v", err)
	}
	if len(builds) != 1 || builds[0].ID != "c" {
		t.Errorf("builds = %+v", builds)
	}
}
