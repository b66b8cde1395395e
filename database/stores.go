// database/stores.go - GORM-backed store implementations. Each store
// translates driver errors into the typed kinds in models so the
// service layer never sees raw gorm errors.
package database

import (
	"errors"

	"xmasbingo/models"

	"gorm.io/gorm"
)

type GroupStore struct {
	db *gorm.DB
}

func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Create(group *models.Group) error {
	if err := s.db.Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.ConflictError{Resource: "group name", Name: group.Name}
		}
		return &models.TransportError{Op: "create group", Err: err}
	}
	return nil
}

func (s *GroupStore) ByName(name string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "group"}
		}
		return nil, &models.TransportError{Op: "fetch group", Err: err}
	}
	return &group, nil
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.ConflictError{Resource: "username", Name: user.Username}
		}
		return &models.TransportError{Op: "create user", Err: err}
	}
	return nil
}

func (s *UserStore) ByGroupAndName(groupID uint, username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("group_id = ? AND username = ?", groupID, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "user"}
		}
		return nil, &models.TransportError{Op: "fetch user", Err: err}
	}
	return &user, nil
}

// ByGroup returns the group's users ordered by username ascending.
// The leaderboard's tie-break depends on this ordering.
func (s *UserStore) ByGroup(groupID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Where("group_id = ?", groupID).Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, &models.TransportError{Op: "list users", Err: err}
	}
	return users, nil
}

type SubmissionStore struct {
	db *gorm.DB
}

func NewSubmissionStore(db *gorm.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) Insert(sub *models.Submission) error {
	if err := s.db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.DuplicateSubmissionError{UserID: sub.UserID, SquareIndex: sub.SquareIndex}
		}
		return &models.TransportError{Op: "insert submission", Err: err}
	}
	return nil
}

func (s *SubmissionStore) ByID(id uint) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.Preload("User").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "submission"}
		}
		return nil, &models.TransportError{Op: "fetch submission", Err: err}
	}
	return &sub, nil
}

func (s *SubmissionStore) ByUser(userID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.Where("user_id = ?", userID).Order("square_index ASC").Find(&subs).Error
	if err != nil {
		return nil, &models.TransportError{Op: "list submissions", Err: err}
	}
	return subs, nil
}

func (s *SubmissionStore) Update(sub *models.Submission) error {
	if err := s.db.Save(sub).Error; err != nil {
		return &models.TransportError{Op: "update submission", Err: err}
	}
	return nil
}

func (s *SubmissionStore) Delete(id uint) error {
	res := s.db.Delete(&models.Submission{}, id)
	if res.Error != nil {
		return &models.TransportError{Op: "delete submission", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "submission"}
	}
	return nil
}

func (s *SubmissionStore) CountApproved(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).
		Where("user_id = ? AND approval_status = ?", userID, models.StatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, &models.TransportError{Op: "count approved", Err: err}
	}
	return count, nil
}

// ApprovedByGroup returns the group's newest approved submissions with
// the submitting user preloaded.
func (s *SubmissionStore) ApprovedByGroup(groupID uint, limit int) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Joins("JOIN users ON users.id = bingo_submissions.user_id").
		Where("users.group_id = ? AND bingo_submissions.approval_status = ?", groupID, models.StatusApproved).
		Order("bingo_submissions.created_at DESC").
		Limit(limit).
		Preload("User").
		Find(&subs).Error
	if err != nil {
		return nil, &models.TransportError{Op: "list group feed", Err: err}
	}
	return subs, nil
}

// ChallengesByGroup returns all challenge submissions in a group,
// newest first, for the admin panel.
func (s *SubmissionStore) ChallengesByGroup(groupID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Joins("JOIN users ON users.id = bingo_submissions.user_id").
		Where("users.group_id = ? AND bingo_submissions.is_challenge = ?", groupID, true).
		Order("bingo_submissions.created_at DESC").
		Preload("User").
		Find(&subs).Error
	if err != nil {
		return nil, &models.TransportError{Op: "list challenge submissions", Err: err}
	}
	return subs, nil
}
