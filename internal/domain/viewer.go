package domain

// Viewer is the resolved identity a report is computed for. It is built by
// the auth middleware and passed down explicitly.
type Viewer struct {
	ID         string          `json:"id"`
	OrgID      string          `json:"org_id,omitempty"`
	Capability OwnerCapability `json:"capability,omitempty"`
	Role       string          `json:"role,omitempty"`
}
