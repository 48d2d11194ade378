package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jask/tablebrowser/internal/database"
	"github.com/jask/tablebrowser/internal/database/repository"
	"github.com/jask/tablebrowser/internal/viewstate"
)

func openStateDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	if err := database.RunMigrations(path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStateServicePersistRestore(t *testing.T) {
	ctx := context.Background()
	db := openStateDB(t)
	repo := repository.NewViewStateRepo(db)

	first := &StateService{Registry: viewstate.New(), Repo: repo, Log: zerolog.Nop()}
	first.Registry.ActivateTab("tables", "views")
	first.Registry.SetCurrentPage("tables", "views", 2)
	if err := first.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	second := &StateService{Registry: viewstate.New(), Repo: repo, Log: zerolog.Nop()}
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	active, _ := second.Registry.ActiveTab("tables")
	if active.Name != "views" {
		t.Errorf("active tab = %q, want views", active.Name)
	}
	if n, _ := second.Registry.CurrentPage("tables", "views"); n != 2 {
		t.Errorf("CurrentPage = %d, want 2", n)
	}
}

func TestStateServiceRestoreEmpty(t *testing.T) {
	db := openStateDB(t)
	svc := &StateService{Registry: viewstate.New(), Repo: repository.NewViewStateRepo(db), Log: zerolog.Nop()}
	svc.Registry.SetFilter("kept", "x")
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("Restore on empty db: %v", err)
	}
	if f, _ := svc.Registry.Filter("kept"); f != "x" {
		t.Error("restore with nothing saved should leave the registry alone")
	}
}

func TestStateServiceUnconfigured(t *testing.T) {
	svc := &StateService{}
	if err := svc.Persist(context.Background()); err == nil {
		t.Error("expected error without registry")
	}
}

func TestMaintenanceReset(t *testing.T) {
	ctx := context.Background()
	db := openStateDB(t)
	repo := repository.NewViewStateRepo(db)
	reg := viewstate.New()
	reg.SetFilter("p", "x")
	if err := repo.Save(ctx, reg.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := (&MaintenanceService{DB: db}).Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := repo.Latest(ctx); err != repository.ErrNoSnapshot {
		t.Errorf("Latest after reset err = %v, want ErrNoSnapshot", err)
	}
	if err := (&MaintenanceService{}).Reset(ctx); err == nil {
		t.Error("expected error without db")
	}
}
