// handlers/feed.go - Activity feed, REST and live websocket push
package handlers

import (
	"log"
	"sync"
	"time"

	"xmasbingo/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type feedItem struct {
	Username       string                `json:"username"`
	SquareIndex    int                   `json:"square_index"`
	SquareText     string                `json:"square_text"`
	SubmissionType models.SubmissionType `json:"submission_type"`
	FileURL        *string               `json:"file_url,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func toFeedItem(sub models.Submission) feedItem {
	item := feedItem{
		SquareIndex:    sub.SquareIndex,
		SquareText:     sub.SquareText,
		SubmissionType: sub.SubmissionType,
		CreatedAt:      sub.CreatedAt,
	}
	if sub.User != nil {
		item.Username = sub.User.Username
	}
	// Raw attestation text stays off the feed; only real URLs go out.
	if sub.FileURL != nil && sub.SubmissionType != models.TypeAttestation {
		item.FileURL = sub.FileURL
	}
	return item
}

// GetFeed returns the newest approved submissions across the group.
// GET /api/groups/:name/feed?limit=20
func GetFeed(c *fiber.Ctx) error {
	group, err := bingoService.GetGroup(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}

	limit := c.QueryInt("limit", 0)
	subs, err := bingoService.ActivityFeed(group.ID, limit)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]feedItem, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toFeedItem(sub))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"items":   items,
	})
}

// feedHub fans approved-submission events out to the websocket
// clients watching each group.
type feedHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]uint
}

var hub = &feedHub{conns: make(map[*websocket.Conn]uint)}

func (h *feedHub) add(conn *websocket.Conn, groupID uint) {
	h.mu.Lock()
	h.conns[conn] = groupID
	h.mu.Unlock()
}

func (h *feedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

func (h *feedHub) broadcast(groupID uint, item feedItem) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, gid := range h.conns {
		if gid != groupID {
			continue
		}
		if err := conn.WriteJSON(item); err != nil {
			log.Printf("feed push failed, dropping client: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// PublishApproved pushes an approved submission to the group's live
// feed watchers. Called after auto-approved creates and admin
// approvals; never from the engine itself.
func PublishApproved(groupID uint, sub *models.Submission) {
	hub.broadcast(groupID, toFeedItem(*sub))
}

// FeedSocket keeps a websocket subscribed to a group's live feed.
// GET /ws/feed/:name
func FeedSocket(conn *websocket.Conn) {
	group, err := bingoService.GetGroup(conn.Params("name"))
	if err != nil {
		conn.WriteJSON(fiber.Map{"error": "group not found"})
		conn.Close()
		return
	}

	hub.add(conn, group.ID)
	defer func() {
		hub.remove(conn)
		conn.Close()
	}()

	// Clients only listen; the read loop just detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
