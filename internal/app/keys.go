// Package app is the rotation engine: waitlist ordering, the booth state
// machine, vote tallying and favorites. All shared room state lives behind
// core.RoomState; the packages below never touch these keys directly.
package app

const (
	keyWaitlist     = "waitlist"
	keyWaitlistLock = "waitlist:lock"

	keyCurrentDJ   = "booth:currentDJ"
	keyHistoryID   = "booth:historyID"
	keyTurn        = "booth:turn"
	keyAdvanceLock = "booth:advancing"

	keyUpvotes   = "booth:upvotes"
	keyDownvotes = "booth:downvotes"
	keyFavorites = "booth:favorites"
)
