package models

import "time"

// Role defines what a member may do within a farm. The capability set
// for each role lives in the permissions package.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleAssociate Role = "ASSOCIATE"
	RoleWorker    Role = "WORKER"
)

// MemberStatus marks whether a membership currently grants access.
type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
)

// Farm represents a single tenant. Every animal, event and cashbox
// entry belongs to exactly one farm.
type Farm struct {
	ID        int64
	Name      string
	Currency  string // ISO 4217, e.g. "USD"
	Timezone  string // IANA name, e.g. "Europe/Madrid"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FarmMember represents the relationship between a user and a farm
type FarmMember struct {
	ID        int64
	FarmID    int64
	UserID    int64
	Role      Role
	Status    MemberStatus
	JoinedAt  time.Time
	UserName  string // Populated via JOIN
	UserEmail string
}

// IsActive reports whether the membership currently grants access.
func (m *FarmMember) IsActive() bool {
	return m.Status == MemberActive
}

// FarmWithRole combines a farm with the requesting user's role in it
type FarmWithRole struct {
	Farm Farm
	Role Role
}
