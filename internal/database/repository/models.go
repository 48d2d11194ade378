package repository

import (
	"errors"
	"time"
)

// ErrNoSnapshot is returned when no view state has been saved yet.
var ErrNoSnapshot = errors.New("no saved view state")

// Session describes a saved view-state session.
type Session struct {
	ID      string
	SavedAt time.Time
	Pages   int
	Tabs    int
}
