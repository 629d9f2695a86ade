package permissions

import (
	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// Action is a capability-gated operation on farm data.
type Action string

const (
	ActionRead          Action = "READ"
	ActionCreate        Action = "CREATE"
	ActionUpdate        Action = "UPDATE"
	ActionDelete        Action = "DELETE"
	ActionManageMembers Action = "MANAGE_MEMBERS"
	ActionExport        Action = "EXPORT"
)

// Capabilities is the fixed capability record for a role.
type Capabilities struct {
	Read          bool
	Create        bool
	Update        bool
	Delete        bool
	ManageMembers bool
	Export        bool
}

// Allows reports whether the capability record permits the action.
// Unknown actions are denied.
func (c Capabilities) Allows(action Action) bool {
	switch action {
	case ActionRead:
		return c.Read
	case ActionCreate:
		return c.Create
	case ActionUpdate:
		return c.Update
	case ActionDelete:
		return c.Delete
	case ActionManageMembers:
		return c.ManageMembers
	case ActionExport:
		return c.Export
	default:
		return false
	}
}

// Get maps a role to its capabilities. Unrecognized roles get an
// all-false record, so a bad role can never widen access.
func Get(role models.Role) Capabilities {
	switch role {
	case models.RoleOwner:
		return Capabilities{
			Read:          true,
			Create:        true,
			Update:        true,
			Delete:        true,
			ManageMembers: true,
			Export:        true,
		}
	case models.RoleAssociate:
		return Capabilities{
			Read:   true,
			Create: true,
			Update: true,
			Export: true,
		}
	case models.RoleWorker:
		return Capabilities{
			Read:   true,
			Create: true,
		}
	default:
		return Capabilities{}
	}
}
