// services/bingo_service.go - Submission Ledger & Scoring Engine
//
// Owns the rules for creating, approving, rejecting and removing task
// submissions, and for deriving progress, leaderboard and activity
// feed from them. Rendering, routing and file transport live with the
// callers.
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"xmasbingo/models"
	"xmasbingo/storage"
)

// DefaultFeedLimit is the activity feed size when the caller does not
// ask for one.
const DefaultFeedLimit = 20

type GroupStore interface {
	Create(*models.Group) error
	ByName(name string) (*models.Group, error)
}

type UserStore interface {
	Create(*models.User) error
	ByGroupAndName(groupID uint, username string) (*models.User, error)
	// ByGroup returns users ordered by username ascending.
	ByGroup(groupID uint) ([]models.User, error)
}

type SubmissionStore interface {
	// Insert persists a new submission. The store's unique constraint
	// on (user_id, square_index) is authoritative: a racing second
	// create must come back as DuplicateSubmissionError.
	Insert(*models.Submission) error
	ByID(id uint) (*models.Submission, error)
	ByUser(userID uint) ([]models.Submission, error)
	Update(*models.Submission) error
	Delete(id uint) error
	CountApproved(userID uint) (int64, error)
	ApprovedByGroup(groupID uint, limit int) ([]models.Submission, error)
	ChallengesByGroup(groupID uint) ([]models.Submission, error)
}

type BingoService struct {
	groups GroupStore
	users  UserStore
	subs   SubmissionStore
	blobs  storage.BlobStore
	now    func() time.Time
}

func NewBingoService(groups GroupStore, users UserStore, subs SubmissionStore, blobs storage.BlobStore) *BingoService {
	return &BingoService{
		groups: groups,
		users:  users,
		subs:   subs,
		blobs:  blobs,
		now:    time.Now,
	}
}

// ================== REGISTRATION ==================

func (s *BingoService) CreateGroup(name string) (*models.Group, error) {
	group := &models.Group{Name: name, CreatedAt: s.now()}
	if err := s.groups.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *BingoService) GetGroup(name string) (*models.Group, error) {
	return s.groups.ByName(name)
}

func (s *BingoService) RegisterPlayer(groupName, username string) (*models.User, error) {
	group, err := s.groups.ByName(groupName)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, GroupID: group.ID, CreatedAt: s.now()}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BingoService) GetPlayer(groupName, username string) (*models.User, error) {
	group, err := s.groups.ByName(groupName)
	if err != nil {
		return nil, err
	}
	return s.users.ByGroupAndName(group.ID, username)
}

// ================== SUBMISSION LIFECYCLE ==================

// Answer carries the caller's proof for one square. FileURL is the
// public URL of an already-uploaded blob; ExternalLink is the pasted
// video-link alternative; Acknowledged is the checkbox for plain
// attestations; Text is the free-text answer for word-count tasks.
type Answer struct {
	Text         string `json:"text"`
	FileURL      string `json:"file_url"`
	ExternalLink string `json:"external_link"`
	Acknowledged bool   `json:"acknowledged"`
}

// CreateSubmission validates the answer against the square's task and
// persists the submission. Challenge squares start pending; everything
// else is approved on the spot. Score is always derived on read, so
// there is no cache to touch here.
func (s *BingoService) CreateSubmission(userID uint, squareIndex int, ans Answer) (*models.Submission, error) {
	task, ok := models.TaskAt(squareIndex)
	if !ok {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("square index %d is out of range", squareIndex)}
	}

	sub := &models.Submission{
		UserID:         userID,
		SquareIndex:    squareIndex,
		SquareText:     task.Text,
		SubmissionType: task.Type,
		IsChallenge:    task.IsChallenge,
		ApprovalStatus: models.StatusApproved,
		CreatedAt:      s.now(),
	}
	if task.IsChallenge {
		sub.ApprovalStatus = models.StatusPending
	}

	switch {
	case task.RequiresText:
		words := CountWords(ans.Text)
		if words < task.MinWords {
			return nil, &models.ValidationError{
				Reason: fmt.Sprintf("your summary must be at least %d words, you currently have %d", task.MinWords, words),
			}
		}
		text := strings.TrimSpace(ans.Text)
		sub.FileURL = &text

	case task.Type == models.TypeAttestation:
		if !ans.Acknowledged {
			return nil, &models.ValidationError{Reason: "you must check the box to attest completion"}
		}

	case task.Type == models.TypePhoto:
		if ans.FileURL == "" {
			return nil, &models.ValidationError{Reason: "a photo upload is required"}
		}
		url := ans.FileURL
		sub.FileURL = &url

	case task.Type == models.TypeVideo:
		url := ans.FileURL
		if url == "" {
			url = strings.TrimSpace(ans.ExternalLink)
		}
		if url == "" {
			return nil, &models.ValidationError{Reason: "a video upload or link is required"}
		}
		sub.FileURL = &url
	}

	if err := s.subs.Insert(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Approve marks a submission approved. Re-approving is a no-op
// success apart from the refreshed actor and timestamp; a rejected
// submission can be approved anyway.
func (s *BingoService) Approve(id uint, actor string) (*models.Submission, error) {
	return s.setStatus(id, models.StatusApproved, actor)
}

// Reject marks a submission rejected, including revoking an earlier
// approval.
func (s *BingoService) Reject(id uint, actor string) (*models.Submission, error) {
	return s.setStatus(id, models.StatusRejected, actor)
}

func (s *BingoService) setStatus(id uint, status models.ApprovalStatus, actor string) (*models.Submission, error) {
	sub, err := s.subs.ByID(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub.ApprovalStatus = status
	sub.ApprovedBy = &actor
	sub.ApprovedAt = &now

	if err := s.subs.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Remove hard-deletes a submission so the square can be resubmitted.
// The backing blob is cleaned up best-effort: a failed blob delete is
// logged and never blocks the ledger delete. Raw attestation text and
// external links are not blobs and are left alone.
func (s *BingoService) Remove(id uint) error {
	sub, err := s.subs.ByID(id)
	if err != nil {
		return err
	}

	if sub.FileURL != nil && s.blobs != nil && s.blobs.Owns(*sub.FileURL) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := s.blobs.Delete(ctx, *sub.FileURL)
		cancel()
		if err != nil {
			log.Printf("blob cleanup failed for submission %d: %v", id, err)
		}
	}

	return s.subs.Delete(id)
}

// Submission fetches one submission by id.
func (s *BingoService) Submission(id uint) (*models.Submission, error) {
	return s.subs.ByID(id)
}

// PlayerSubmissions lists a player's submissions in square order.
func (s *BingoService) PlayerSubmissions(userID uint) ([]models.Submission, error) {
	return s.subs.ByUser(userID)
}

// ================== DERIVED VIEWS ==================

type Progress struct {
	ApprovedCount int `json:"approvedCount"`
	Total         int `json:"total"`
}

// Progress counts only approved submissions; pending and rejected
// never show on the board tally.
func (s *BingoService) Progress(userID uint) (Progress, error) {
	count, err := s.subs.CountApproved(userID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{ApprovedCount: int(count), Total: models.BoardSize}, nil
}

type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard scores every user in the group by approved-submission
// count, descending. The stable sort over the username-ascending fetch
// keeps ties in username order.
func (s *BingoService) Leaderboard(groupID uint) ([]LeaderboardEntry, error) {
	users, err := s.users.ByGroup(groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		count, err := s.subs.CountApproved(user.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{Username: user.Username, Score: int(count)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries, nil
}

// ActivityFeed returns the group's newest approved submissions,
// created_at descending. Pending and rejected submissions never
// appear, regardless of recency.
func (s *BingoService) ActivityFeed(groupID uint, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.subs.ApprovedByGroup(groupID, limit)
}

// ChallengeSubmissions lists a group's challenge submissions for the
// admin panel, newest first, optionally filtered by status.
func (s *BingoService) ChallengeSubmissions(groupID uint, status string) ([]models.Submission, error) {
	switch status {
	case "", "all", string(models.StatusPending), string(models.StatusApproved), string(models.StatusRejected):
	default:
		return nil, &models.ValidationError{Reason: fmt.Sprintf("unknown status filter %q", status)}
	}

	subs, err := s.subs.ChallengesByGroup(groupID)
	if err != nil {
		return nil, err
	}
	if status == "" || status == "all" {
		return subs, nil
	}

	filtered := subs[:0]
	for _, sub := range subs {
		if sub.ApprovalStatus == models.ApprovalStatus(status) {
			filtered = append(filtered, sub)
		}
	}
	return filtered, nil
}

// CountWords counts whitespace-delimited non-empty tokens. The word
// gate for text answers is defined in these terms.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
