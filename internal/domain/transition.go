package domain

import "time"

type ProofKind string

const (
	ProofKindPhoto     ProofKind = "photo"
	ProofKindSignature ProofKind = "signature"
	ProofKindGPS       ProofKind = "gps"
	ProofKindReceipt   ProofKind = "receipt"
)

// ProofArtifact references stored evidence (photo, signature, GPS fix,
// receipt) attached to a transition. StorageKey points into the artifact
// store; the machine never inspects the bytes.
type ProofArtifact struct {
	Kind       ProofKind `json:"kind"`
	StorageKey string    `json:"storage_key"`
}

// StatusTransition is the audit record for one accepted transition.
// Rows are append-only; rejected attempts are never written here.
type StatusTransition struct {
	ID                int32           `json:"id"`
	RentalID          int32           `json:"rental_id"`
	FromStatus        RentalStatus    `json:"from_status"`
	ToStatus          RentalStatus    `json:"to_status"`
	ActorID           int32           `json:"actor_id"`
	ActorRole         ActorRole       `json:"actor_role"`
	Note              string          `json:"note"`
	VisibleToCustomer bool            `json:"visible_to_customer"`
	Proofs            []ProofArtifact `json:"proofs,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransitionRequest is the inbound payload for RequestTransition. Fee
// fields only apply on the return-completion arc, where damage and late
// fees are finalized.
type TransitionRequest struct {
	TargetStatus      RentalStatus    `json:"target_status"`
	Note              string          `json:"note"`
	VisibleToCustomer bool            `json:"visible_to_customer"`
	Proofs            []ProofArtifact `json:"proofs,omitempty"`
	DamageFeeCents    *int64          `json:"damage_fee_cents,omitempty"`
}

// HasProof reports whether the request carries at least one artifact of
// the given kind.
func (r *TransitionRequest) HasProof(kind ProofKind) bool {
	for _, p := range r.Proofs {
		if p.Kind == kind {
			return true
		}
	}
	return false
}
