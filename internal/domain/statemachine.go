package domain

// The rental lifecycle is a closed state machine: one allow-list of
// (from, to) pairs, each with the roles permitted to trigger it and any
// extra requirement (note text, completed payment, proof artifacts).
// Every permission check in the system goes through this table so role
// rules cannot drift between endpoints.

// TransitionRule describes one allowed (from, to) arc.
type TransitionRule struct {
	Roles          []ActorRole
	RequireNote    bool
	RequirePayment bool         // completed rental-fee payment or COD authorization
	RecordsStart   bool         // sets actual_start on commit
	RecordsEnd     bool         // sets actual_end on commit
	FinalizesFees  bool         // late/damage fees finalized at this arc
	AutoAdvanceTo  RentalStatus
}

// AllowsRole reports whether the given role may trigger this arc.
func (r TransitionRule) AllowsRole(role ActorRole) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var transitionTable = map[RentalStatus]map[RentalStatus]TransitionRule{
	RentalStatusPending: {
		RentalStatusApproved:  {Roles: []ActorRole{RoleSeller, RoleStaff}},
		RentalStatusCancelled: {Roles: []ActorRole{RoleCustomer, RoleSeller, RoleStaff}, RequireNote: true},
	},
	RentalStatusApproved: {
		RentalStatusConfirmed:      {Roles: []ActorRole{RoleSystem}, RequirePayment: true},
		RentalStatusPaymentPending: {Roles: []ActorRole{RoleSystem}},
		RentalStatusCancelled:      {Roles: []ActorRole{RoleCustomer, RoleStaff, RoleSystem}},
	},
	RentalStatusPaymentPending: {
		RentalStatusConfirmed: {Roles: []ActorRole{RoleSystem}, RequirePayment: true},
		RentalStatusCancelled: {Roles: []ActorRole{RoleCustomer, RoleStaff, RoleSystem}},
	},
	RentalStatusConfirmed: {
		RentalStatusPreparing: {Roles: []ActorRole{RoleSeller, RoleStaff}},
	},
	RentalStatusPreparing: {
		RentalStatusReadyForPickup: {Roles: []ActorRole{RoleSeller, RoleStaff}},
	},
	RentalStatusReadyForPickup: {
		RentalStatusOutForDelivery: {Roles: []ActorRole{RoleSeller, RoleStaff}},
	},
	RentalStatusOutForDelivery: {
		RentalStatusDelivered: {Roles: []ActorRole{RoleSeller, RoleStaff}, RecordsStart: true, AutoAdvanceTo: RentalStatusInProgress},
	},
	RentalStatusDelivered: {
		RentalStatusInProgress: {Roles: []ActorRole{RoleSystem}},
	},
	RentalStatusInProgress: {
		RentalStatusReturnRequested: {Roles: []ActorRole{RoleCustomer}},
		RentalStatusOverdue:         {Roles: []ActorRole{RoleSystem}},
	},
	RentalStatusReturnRequested: {
		RentalStatusReturning: {Roles: []ActorRole{RoleSeller, RoleStaff}},
	},
	RentalStatusOverdue: {
		RentalStatusReturning: {Roles: []ActorRole{RoleSeller, RoleStaff}},
		RentalStatusDispute:   {Roles: []ActorRole{RoleSeller, RoleStaff}, RequireNote: true},
	},
	RentalStatusReturning: {
		RentalStatusCompleted: {Roles: []ActorRole{RoleSeller, RoleStaff}, RecordsEnd: true, FinalizesFees: true},
	},
	RentalStatusDispute: {
		RentalStatusCompleted: {Roles: []ActorRole{RoleStaff}, RequireNote: true, RecordsEnd: true, FinalizesFees: true},
		RentalStatusCancelled: {Roles: []ActorRole{RoleStaff}, RequireNote: true},
	},
}

func init() {
	// Any non-terminal state can escalate to dispute. States with an
	// explicit dispute arc (overdue) keep their narrower rule.
	for _, from := range AllRentalStatuses {
		if from.IsTerminal() || from == RentalStatusDispute {
			continue
		}
		arcs := transitionTable[from]
		if _, ok := arcs[RentalStatusDispute]; ok {
			continue
		}
		arcs[RentalStatusDispute] = TransitionRule{
			Roles:       []ActorRole{RoleCustomer, RoleSeller, RoleStaff},
			RequireNote: true,
		}
	}
}

// RuleFor returns the rule for a (from, to) pair, or ok=false when the
// pair is not in the allow-list.
func RuleFor(from, to RentalStatus) (TransitionRule, bool) {
	arcs, ok := transitionTable[from]
	if !ok {
		return TransitionRule{}, false
	}
	rule, ok := arcs[to]
	return rule, ok
}

// ReplayedThrough reports whether a request targeting `to` replays an
// arc whose auto-advance already moved the rental on to cur. The
// inbound rule is returned so callers can verify its side effects took
// place before treating the request as already applied.
func ReplayedThrough(to, cur RentalStatus) (TransitionRule, bool) {
	for _, arcs := range transitionTable {
		if rule, ok := arcs[to]; ok && rule.AutoAdvanceTo == cur {
			return rule, true
		}
	}
	return TransitionRule{}, false
}

// proofPolicy is the proof requirement lookup: which evidence kinds are
// mandatory before an arc is accepted. Deliberately a plain map, not a
// rules engine.
var proofPolicy = map[RentalStatus]map[RentalStatus][]ProofKind{
	RentalStatusOutForDelivery: {
		RentalStatusDelivered: {ProofKindPhoto},
	},
	RentalStatusReturning: {
		RentalStatusCompleted: {ProofKindPhoto},
	},
}

// RequiredProofs returns the evidence kinds mandatory for the arc.
// Signature and GPS are never required; they are stored when present.
func RequiredProofs(from, to RentalStatus) []ProofKind {
	return proofPolicy[from][to]
}
