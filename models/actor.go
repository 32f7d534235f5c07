package models

// ActorRole tags the outcome of resolving a verified email against the
// account collections. Unknown is a distinct outcome from forbidden: a
// verified token whose email has no account resolves to RoleUnknownActor.
type ActorRole string

const (
	RoleUnknownActor ActorRole = "unknown"
	RoleCitizenActor ActorRole = "citizen"
	RoleStaffActor   ActorRole = "staff"
	RoleAdminActor   ActorRole = "admin"
)

// Actor is the resolved identity behind a verified email. Every protected
// operation receives one of these instead of re-querying role state inline.
type Actor struct {
	Role    ActorRole
	Email   string
	Name    string
	Active  bool
	Premium bool
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdminActor
}

func (a Actor) IsActiveStaff() bool {
	return a.Role == RoleStaffActor && a.Active
}

func (a Actor) IsActiveCitizen() bool {
	return a.Role == RoleCitizenActor && a.Active
}

// TimelineLabel is the role label recorded on timeline entries this actor
// produces.
func (a Actor) TimelineLabel() string {
	switch a.Role {
	case RoleAdminActor:
		return "Admin"
	case RoleStaffActor:
		return "Staff"
	default:
		return "Citizen"
	}
}
