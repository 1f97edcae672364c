package http

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dkeye/Stage/internal/app"
	"github.com/dkeye/Stage/internal/domain"
)

type Handler struct {
	Engine *app.Engine
}

type openSessionRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// OpenSession binds an already-provisioned user ID to the cookie session.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid userID"})
		return
	}
	sess := sessions.Default(c)
	sess.Set("uid", req.UserID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userID": req.UserID})
}

func (h *Handler) GetBooth(c *gin.Context) {
	snap, err := h.Engine.Booth.Snapshot(c.Request.Context())
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.Engine.Booth.Recent(c.Request.Context(), page, limit)
	if err != nil {
		abortErr(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "entries": entries})
}

type skipRequest struct {
	UserID string `json:"userID"`
	Reason string `json:"reason"`
	Remove bool   `json:"remove"`
}

func (h *Handler) SkipBooth(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if !user.Privileged() {
		abortErr(c, domain.ErrNotPrivileged)
		return
	}
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	target := domain.UserID(req.UserID)
	if target == "" {
		dj, err := h.Engine.Scheduler.CurrentDJ(c.Request.Context())
		if err != nil {
			abortErr(c, err)
			return
		}
		target = dj
	}
	if err := h.Engine.Scheduler.Skip(c.Request.Context(), user.ID, target, req.Reason, app.AdvanceOpts{Remove: req.Remove}); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skipped": true})
}

type replaceRequest struct {
	UserID string `json:"userID" binding:"required"`
}

func (h *Handler) ReplaceBooth(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if !user.Privileged() {
		abortErr(c, domain.ErrNotPrivileged)
		return
	}
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid userID"})
		return
	}
	if err := h.Engine.Scheduler.Replace(c.Request.Context(), user.ID, domain.UserID(req.UserID)); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replaced": true})
}

type favoriteRequest struct {
	PlaylistID string `json:"playlistID" binding:"required"`
	HistoryID  string `json:"historyID" binding:"required"`
}

func (h *Handler) Favorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.Engine.Favorites.Grab(c.Request.Context(), user.ID,
		domain.PlaylistID(req.PlaylistID), domain.HistoryID(req.HistoryID))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type voteRequest struct {
	Direction int `json:"direction" binding:"required"`
}

func (h *Handler) Vote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.Engine.Votes.Cast(c.Request.Context(), user.ID, req.Direction); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voted": true})
}

func (h *Handler) GetWaitlist(c *gin.Context) {
	order, err := h.Engine.Waitlist.List(c.Request.Context())
	if err != nil {
		abortErr(c, err)
		return
	}
	locked, err := h.Engine.Waitlist.Locked(c.Request.Context())
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": order, "locked": locked})
}

type joinWaitlistRequest struct {
	UserID   string `json:"userID" binding:"required"`
	Position *int   `json:"position"`
}

// JoinWaitlist appends a user, or inserts at a position when one is given.
// Positioned inserts and joining on someone else's behalf are moderator
// actions.
func (h *Handler) JoinWaitlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req joinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid userID"})
		return
	}
	target := domain.UserID(req.UserID)
	if target != user.ID && !user.Privileged() {
		abortErr(c, domain.ErrNotPrivileged)
		return
	}

	var order []domain.UserID
	var err error
	if req.Position != nil {
		order, err = h.Engine.Waitlist.InsertAt(c.Request.Context(), user.ID, target, *req.Position, user.Privileged())
	} else {
		order, err = h.Engine.Waitlist.Append(c.Request.Context(), target, user.Privileged())
	}
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": order})
}

type moveWaitlistRequest struct {
	UserID   string `json:"userID" binding:"required"`
	Position *int   `json:"position" binding:"required"`
}

func (h *Handler) MoveWaitlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req moveWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := h.Engine.Waitlist.Move(c.Request.Context(), user.ID,
		domain.UserID(req.UserID), *req.Position, user.Privileged())
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": order})
}

func (h *Handler) LeaveWaitlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	target := domain.UserID(c.Param("id"))
	order, err := h.Engine.Waitlist.Remove(c.Request.Context(), user.ID, target, user.Privileged())
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": order})
}

func (h *Handler) ClearWaitlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if user.Role < domain.RoleManager {
		abortErr(c, domain.ErrNotPrivileged)
		return
	}
	if err := h.Engine.Waitlist.Clear(c.Request.Context(), user.ID, true); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waitlist": []domain.UserID{}})
}

type lockWaitlistRequest struct {
	Lock *bool `json:"lock" binding:"required"`
}

func (h *Handler) LockWaitlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req lockWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid lock flag"})
		return
	}
	if err := h.Engine.Waitlist.SetLocked(c.Request.Context(), user.ID, *req.Lock, user.Privileged()); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": *req.Lock})
}
