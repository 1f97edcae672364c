package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Stage/internal/domain"
)

// Command is the envelope for every event on the room's pub/sub channel.
// Data is kept as raw JSON on the receive path so the fanout layer can
// forward it without knowing each payload shape.
type Command struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

const (
	CmdAdvance      = "advance"
	CmdSkip         = "skip"
	CmdBoothReplace = "boothReplace"
	CmdFavorite     = "favorite"
	CmdVote         = "vote"

	CmdWaitlistJoin   = "waitlistJoin"
	CmdWaitlistMove   = "waitlistMove"
	CmdWaitlistLeave  = "waitlistLeave"
	CmdWaitlistRemove = "waitlistRemove"
	CmdWaitlistClear  = "waitlistClear"
	CmdWaitlistLock   = "waitlistLock"
)

// AdvancePayload announces a new play. A nil *AdvancePayload is published
// when the booth goes empty.
type AdvancePayload struct {
	HistoryID  domain.HistoryID     `json:"historyID"`
	UserID     domain.UserID        `json:"userID"`
	PlaylistID domain.PlaylistID    `json:"playlistID"`
	Media      domain.MediaSnapshot `json:"media"`
	PlayedAt   time.Time            `json:"playedAt"`
}

type SkipPayload struct {
	ModeratorID domain.UserID `json:"moderatorID"`
	UserID      domain.UserID `json:"userID"`
	Reason      string        `json:"reason"`
}

type BoothReplacePayload struct {
	ModeratorID domain.UserID `json:"moderatorID"`
	UserID      domain.UserID `json:"userID"`
}

type FavoritePayload struct {
	UserID     domain.UserID     `json:"userID"`
	PlaylistID domain.PlaylistID `json:"playlistID"`
}

type VotePayload struct {
	UserID    domain.UserID `json:"userID"`
	Direction int           `json:"direction"`
}

type WaitlistUserPayload struct {
	ModeratorID domain.UserID   `json:"moderatorID,omitempty"`
	UserID      domain.UserID   `json:"userID"`
	Position    int             `json:"position,omitempty"`
	Waitlist    []domain.UserID `json:"waitlist"`
}

type WaitlistClearPayload struct {
	ModeratorID domain.UserID `json:"moderatorID"`
}

type WaitlistLockPayload struct {
	ModeratorID domain.UserID `json:"moderatorID"`
	Locked      bool          `json:"locked"`
}
