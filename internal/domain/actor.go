package domain

// ActorRole identifies who is requesting a transition relative to the
// rental. Customer and Seller are resolved against the rental's own
// references by the caller (identity is an external concern); Staff is a
// platform operator and System is the backend itself (payment webhooks,
// scheduled sweeps, auto-advances).
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleSeller   ActorRole = "seller"
	RoleStaff    ActorRole = "staff"
	RoleSystem   ActorRole = "system"
)

// Actor is the resolved identity behind a request.
type Actor struct {
	UserID int32     `json:"user_id"`
	Role   ActorRole `json:"role"`
}

var SystemActor = Actor{UserID: 0, Role: RoleSystem}
