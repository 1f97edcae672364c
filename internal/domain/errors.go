package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrHistoryNotFound  = errors.New("history entry not found")

	ErrSelfFavorite  = errors.New("cannot favorite your own play")
	ErrNotOwner      = errors.New("cannot edit playlists of other users")
	ErrNotPrivileged = errors.New("moderator role required")

	ErrWaitlistLocked = errors.New("waitlist is locked")
	ErrWaitlistEmpty  = errors.New("waitlist is empty")
	ErrNotInWaitlist  = errors.New("user is not in the waitlist")

	ErrConflict = errors.New("state changed concurrently")
)
