package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ID is an opaque, server-assigned project/user identifier.
//
// The API sends integer ids; strings are accepted too so the client never depends on the
// server's representation.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(id))
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id: %s", string(b))
	}
	*id = ID(n.String())
	return nil
}

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists the lifecycle in board column order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

type User struct {
	ID       ID      `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Role     string  `json:"role"`
}

// DisplayName returns the full name when set, else the email.
func (u User) DisplayName() string {
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		return strings.TrimSpace(*u.FullName)
	}
	return u.Email
}

type Project struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status"`
	OwnerID     ID      `json:"owner_id"`
}

// DescriptionText returns the description or "" when absent.
func (p Project) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// ProjectFields is the create/update payload. Nil fields are omitted (PATCH semantics).
type ProjectFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (f ProjectFields) Empty() bool {
	return f.Name == nil && f.Description == nil && f.Status == nil
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"createdAt"`
}

func StrPtr(s string) *string { return &s }

func StatusPtr(s Status) *Status { return &s }

const (
	NameMinLen = 3
	NameMaxLen = 100
)

// ValidateName checks a project name the way the create and edit forms do.
func ValidateName(name string) error {
	t := strings.TrimSpace(name)
	switch {
	case t == "":
		return errors.New("Project name is required")
	case utf8.RuneCountInString(t) < NameMinLen:
		return fmt.Errorf("Project name must be at least %d characters", NameMinLen)
	case utf8.RuneCountInString(name) > NameMaxLen:
		return fmt.Errorf("Project name must be less than %d characters", NameMaxLen)
	}
	return nil
}
