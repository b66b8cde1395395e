// services/memstore.go - In-memory store implementations. They back
// the engine tests and double as a database-free mode for local
// hacking; they enforce the same uniqueness rules the SQL indexes do.
package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"xmasbingo/models"
)

type MemGroupStore struct {
	mu     sync.Mutex
	nextID uint
	groups map[uint]*models.Group
}

func NewMemGroupStore() *MemGroupStore {
	return &MemGroupStore{groups: make(map[uint]*models.Group)}
}

func (s *MemGroupStore) Create(group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == group.Name {
			return &models.ConflictError{Resource: "group name", Name: group.Name}
		}
	}
	s.nextID++
	group.ID = s.nextID
	clone := *group
	s.groups[group.ID] = &clone
	return nil
}

func (s *MemGroupStore) ByName(name string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == name {
			clone := *g
			return &clone, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "group"}
}

type MemUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[uint]*models.User)}
}

func (s *MemUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GroupID == user.GroupID && u.Username == user.Username {
			return &models.ConflictError{Resource: "username", Name: user.Username}
		}
	}
	s.nextID++
	user.ID = s.nextID
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemUserStore) ByGroupAndName(groupID uint, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GroupID == groupID && u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "user"}
}

func (s *MemUserStore) ByGroup(groupID uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, u := range s.users {
		if u.GroupID == groupID {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.Compare(users[i].Username, users[j].Username) < 0
	})
	return users, nil
}

type MemSubmissionStore struct {
	mu     sync.Mutex
	nextID uint
	subs   map[uint]*models.Submission
	users  *MemUserStore
}

// NewMemSubmissionStore needs the user store to resolve group scoping
// for the feed and admin queries.
func NewMemSubmissionStore(users *MemUserStore) *MemSubmissionStore {
	return &MemSubmissionStore{subs: make(map[uint]*models.Submission), users: users}
}

func (s *MemSubmissionStore) Insert(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subs {
		if existing.UserID == sub.UserID && existing.SquareIndex == sub.SquareIndex {
			return &models.DuplicateSubmissionError{UserID: sub.UserID, SquareIndex: sub.SquareIndex}
		}
	}
	s.nextID++
	sub.ID = s.nextID
	clone := *sub
	s.subs[sub.ID] = &clone
	return nil
}

func (s *MemSubmissionStore) ByID(id uint) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "submission"}
	}
	clone := *sub
	s.attachUser(&clone)
	return &clone, nil
}

func (s *MemSubmissionStore) ByUser(userID uint) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []models.Submission
	for _, sub := range s.subs {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SquareIndex < subs[j].SquareIndex })
	return subs, nil
}

func (s *MemSubmissionStore) Update(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.ID]; !ok {
		return &models.NotFoundError{Resource: "submission"}
	}
	clone := *sub
	clone.User = nil
	s.subs[sub.ID] = &clone
	return nil
}

func (s *MemSubmissionStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return &models.NotFoundError{Resource: "submission"}
	}
	delete(s.subs, id)
	return nil
}

func (s *MemSubmissionStore) CountApproved(userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.ApprovalStatus == models.StatusApproved {
			count++
		}
	}
	return count, nil
}

func (s *MemSubmissionStore) ApprovedByGroup(groupID uint, limit int) ([]models.Submission, error) {
	subs := s.groupSubs(groupID, func(sub *models.Submission) bool {
		return sub.ApprovalStatus == models.StatusApproved
	})
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (s *MemSubmissionStore) ChallengesByGroup(groupID uint) ([]models.Submission, error) {
	return s.groupSubs(groupID, func(sub *models.Submission) bool {
		return sub.IsChallenge
	}), nil
}

// groupSubs returns matching submissions for a group, newest first,
// with users attached.
func (s *MemSubmissionStore) groupSubs(groupID uint, match func(*models.Submission) bool) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []models.Submission
	for _, sub := range s.subs {
		user := s.lookupUser(sub.UserID)
		if user == nil || user.GroupID != groupID || !match(sub) {
			continue
		}
		clone := *sub
		s.attachUser(&clone)
		subs = append(subs, clone)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].ID > subs[j].ID
		}
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs
}

func (s *MemSubmissionStore) attachUser(sub *models.Submission) {
	sub.User = s.lookupUser(sub.UserID)
}

func (s *MemSubmissionStore) lookupUser(id uint) *models.User {
	if s.users == nil {
		return nil
	}
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	if user, ok := s.users.users[id]; ok {
		clone := *user
		return &clone
	}
	return nil
}

// MemBlobStore records uploads and deletes for tests.
type MemBlobStore struct {
	mu      sync.Mutex
	BaseURL string
	Objects map[string][]byte
	Deleted []string
	FailDel bool
}

func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{
		BaseURL: "https://blobs.test/bingo-uploads",
		Objects: make(map[string][]byte),
	}
}

func (s *MemBlobStore) Upload(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &models.TransportError{Op: "upload blob", Err: err}
	}
	s.mu.Lock()
	s.Objects[key] = data
	s.mu.Unlock()
	return s.BaseURL + "/" + key, nil
}

func (s *MemBlobStore) Delete(ctx context.Context, publicURL string) error {
	if s.FailDel {
		return &models.TransportError{Op: "delete blob", Err: context.DeadlineExceeded}
	}
	key := strings.TrimPrefix(publicURL, s.BaseURL+"/")
	s.mu.Lock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	s.mu.Unlock()
	return nil
}

func (s *MemBlobStore) Owns(publicURL string) bool {
	return strings.HasPrefix(publicURL, s.BaseURL+"/")
}
