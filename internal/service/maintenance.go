package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/tablebrowser/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes saved view state. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := repository.NewViewStateRepo(s.DB).Clear(ctx); err != nil {
		return fmt.Errorf("reset view state: %w", err)
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
