package auth

// ActorKind tags which credential form an Actor was resolved from.
type ActorKind string

const (
	ActorCustomer ActorKind = "customer"
	ActorStaff    ActorKind = "staff"
)

// Actor is the resolved capability every mutation operates on. Raw
// credentials never travel past the resolver: a customer actor proves
// possession of a session secret, a staff actor proves a verified
// identity plus a store role.
type Actor struct {
	Kind ActorKind

	// SessionID is set for customer actors.
	SessionID uint

	// UserID and Role are set for staff actors; Role is the caller's
	// role in the store the resolution was scoped to.
	UserID uint
	Role   string
}

// IsStaff reports whether the actor was resolved from an identity token.
func (a *Actor) IsStaff() bool {
	return a.Kind == ActorStaff
}
