package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jask/tablebrowser/internal/database/repository"
	"github.com/jask/tablebrowser/internal/viewstate"
)

// StateService moves registry state in and out of the state database.
type StateService struct {
	Registry *viewstate.Registry
	Repo     *repository.ViewStateRepo
	Log      zerolog.Logger
}

// Restore loads the last saved session into the registry. Having nothing
// saved is not an error.
func (s *StateService) Restore(ctx context.Context) error {
	if s.Registry == nil || s.Repo == nil {
		return fmt.Errorf("state: registry or repo not configured")
	}
	snap, err := s.Repo.Latest(ctx)
	if errors.Is(err, repository.ErrNoSnapshot) {
		s.Log.Debug().Msg("no saved view state")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load view state: %w", err)
	}
	s.Registry.Restore(snap)
	s.Log.Info().Str("from_session", snap.Session).Int("pages", len(snap.Pages)).Msg("view state restored")
	return nil
}

// Persist saves the registry as the latest session.
func (s *StateService) Persist(ctx context.Context) error {
	if s.Registry == nil || s.Repo == nil {
		return fmt.Errorf("state: registry or repo not configured")
	}
	snap := s.Registry.Snapshot()
	if err := s.Repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	s.Log.Info().Str("session", snap.Session).Int("pages", len(snap.Pages)).Msg("view state saved")
	return nil
}
