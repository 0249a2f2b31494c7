package handlers

import (
	"log"

	"github.com/google/uuid"

	"github.com/murmurchat/murmur/internal/database"
)

// PresenceTracker пишет presence-переходы в user_details.status.
// Hub зовет его на первом соединении пользователя и после закрытия последнего,
// так что два одновременных соединения не роняют пользователя в offline.
type PresenceTracker struct {
	db *database.Database
}

func NewPresenceTracker(db *database.Database) *PresenceTracker {
	return &PresenceTracker{db: db}
}

func (p *PresenceTracker) UserOnline(userID uuid.UUID) {
	if err := p.db.SetOnlineStatus(userID, true); err != nil {
		log.Printf("Failed to mark user %s online: %v", userID, err)
	}
}

func (p *PresenceTracker) UserOffline(userID uuid.UUID) {
	if err := p.db.SetOnlineStatus(userID, false); err != nil {
		log.Printf("Failed to mark user %s offline: %v", userID, err)
	}
}
