package permissions

import (
	"errors"
	"testing"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

func TestGetCapabilityTable(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want Capabilities
	}{
		{
			name: "owner has everything",
			role: models.RoleOwner,
			want: Capabilities{Read: true, Create: true, Update: true, Delete: true, ManageMembers: true, Export: true},
		},
		{
			name: "associate cannot delete or manage members",
			role: models.RoleAssociate,
			want: Capabilities{Read: true, Create: true, Update: true, Export: true},
		},
		{
			name: "worker can only read and create",
			role: models.RoleWorker,
			want: Capabilities{Read: true, Create: true},
		},
		{
			name: "unknown role gets nothing",
			role: models.Role("ADMIN"),
			want: Capabilities{},
		},
		{
			name: "empty role gets nothing",
			role: "",
			want: Capabilities{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Get(tt.role); got != tt.want {
				t.Errorf("Get(%q) = %+v, want %+v", tt.role, got, tt.want)
			}
		})
	}
}

func TestCapabilitiesAllows(t *testing.T) {
	owner := Get(models.RoleOwner)
	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionManageMembers, ActionExport} {
		if !owner.Allows(action) {
			t.Errorf("owner should be allowed %s", action)
		}
	}

	worker := Get(models.RoleWorker)
	if !worker.Allows(ActionRead) || !worker.Allows(ActionCreate) {
		t.Error("worker should be allowed READ and CREATE")
	}
	for _, action := range []Action{ActionUpdate, ActionDelete, ActionManageMembers, ActionExport} {
		if worker.Allows(action) {
			t.Errorf("worker should be denied %s", action)
		}
	}

	if owner.Allows(Action("REBOOT")) {
		t.Error("unknown action should be denied")
	}
}

type fakeMemberStore struct {
	member *models.FarmMember
	err    error
}

func (f *fakeMemberStore) GetMember(farmID, userID int64) (*models.FarmMember, error) {
	return f.member, f.err
}

func TestCheckFarmAccess(t *testing.T) {
	tests := []struct {
		name   string
		store  *fakeMemberStore
		action Action
		want   bool
	}{
		{
			name: "active owner may delete",
			store: &fakeMemberStore{
				member: &models.FarmMember{Role: models.RoleOwner, Status: models.MemberActive},
			},
			action: ActionDelete,
			want:   true,
		},
		{
			name: "active worker may not export",
			store: &fakeMemberStore{
				member: &models.FarmMember{Role: models.RoleWorker, Status: models.MemberActive},
			},
			action: ActionExport,
			want:   false,
		},
		{
			name: "inactive owner is denied",
			store: &fakeMemberStore{
				member: &models.FarmMember{Role: models.RoleOwner, Status: models.MemberInactive},
			},
			action: ActionRead,
			want:   false,
		},
		{
			name:   "no membership is denied",
			store:  &fakeMemberStore{},
			action: ActionRead,
			want:   false,
		},
		{
			name:   "lookup failure is denied",
			store:  &fakeMemberStore{err: errors.New("connection refused")},
			action: ActionRead,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(tt.store)
			if got := checker.CheckFarmAccess(1, 1, tt.action); got != tt.want {
				t.Errorf("CheckFarmAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemberRole(t *testing.T) {
	active := NewChecker(&fakeMemberStore{
		member: &models.FarmMember{Role: models.RoleAssociate, Status: models.MemberActive},
	})
	if got := active.MemberRole(1, 1); got != models.RoleAssociate {
		t.Errorf("MemberRole() = %q, want %q", got, models.RoleAssociate)
	}

	inactive := NewChecker(&fakeMemberStore{
		member: &models.FarmMember{Role: models.RoleOwner, Status: models.MemberInactive},
	})
	if got := inactive.MemberRole(1, 1); got != "" {
		t.Errorf("MemberRole() for inactive member = %q, want empty", got)
	}
}
