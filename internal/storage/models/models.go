package models

import (
	"strings"
	"time"
)

// TimeLayout is the created_at format stored in the complaints table.
const TimeLayout = "2006-01-02 15:04:05"

type ComplaintType string

const (
	TypeGeneral  ComplaintType = "General"
	TypeCritical ComplaintType = "Critical"
)

func ParseComplaintType(s string) (ComplaintType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general", "":
		return TypeGeneral, true
	case "critical":
		return TypeCritical, true
	}
	return "", false
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Statuses lists the status domain in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

type Complaint struct {
	ID          int64         `db:"id" json:"id"`
	Type        ComplaintType `db:"type" json:"type"`
	Category    string        `db:"category" json:"category"`
	Subcategory string        `db:"subcategory" json:"subcategory"`
	Description string        `db:"description" json:"description"`
	IsAnonymous bool          `db:"is_anonymous" json:"is_anonymous"`
	FilePath    string        `db:"file_path" json:"file_path,omitempty"`
	Email       string        `db:"email" json:"email,omitempty"`
	Status      Status        `db:"status" json:"status"`
	AssignedTo  string        `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt   string        `db:"created_at" json:"created_at"`
}

// Created parses CreatedAt, returning the zero time when it is malformed.
func (c *Complaint) Created() time.Time {
	t, err := time.ParseInLocation(TimeLayout, c.CreatedAt, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a chat session, kept for display only.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
