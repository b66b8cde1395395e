// models/submission.go - Submission record and status constants
package models

import "time"

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

type SubmissionType string

const (
	TypePhoto       SubmissionType = "photo"
	TypeVideo       SubmissionType = "video"
	TypeAttestation SubmissionType = "attestation"
)

// Submission is a player's proof-of-completion for one board square.
// SquareText and IsChallenge are snapshots of the task catalog at
// submission time; later catalog edits must not rewrite history.
//
// FileURL is overloaded exactly like the stored records it mirrors: a
// public blob/external URL for photo and video proofs, the raw summary
// text for text attestations, and nil for plain checkbox attestations.
type Submission struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_submissions_user_square"`
	User           *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	SquareIndex    int            `json:"square_index" gorm:"not null;uniqueIndex:idx_submissions_user_square"`
	SquareText     string         `json:"square_text" gorm:"not null;type:text"`
	SubmissionType SubmissionType `json:"submission_type" gorm:"not null;size:20"`
	FileURL        *string        `json:"file_url" gorm:"type:text"`
	IsChallenge    bool           `json:"is_challenge" gorm:"not null;default:false;index"`
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"not null;default:'approved';size:20;index"`
	ApprovedBy     *string        `json:"approved_by" gorm:"size:50"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (Submission) TableName() string {
	return "bingo_submissions"
}
