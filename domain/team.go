package domain

import "time"

// Role is a member's standing within a team.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Member ties a user identity to a role within one team.
type Member struct {
	UserID string `bson:"userId" json:"userId"`
	Role   Role   `bson:"role" json:"role"`
}

// Team groups members and owns boards and chat channels.
type Team struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Members   []Member  `bson:"members" json:"members"`
	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// IsMember reports whether the user belongs to the team.
func (t *Team) IsMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// RoleOf returns the user's role, defaulting to RoleMember when the
// user is not on the member list at all. Callers must check IsMember
// first when absence matters.
func (t *Team) RoleOf(userID string) Role {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return RoleMember
}
