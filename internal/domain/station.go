package domain

import (
	"fmt"
	"strings"
)

type StationType string

const (
	StationTypeCharge StationType = "CHARGE"
	StationTypeSwap   StationType = "SWAP"
)

// ParseStationType normalizes a source value to the canonical upper-case
// form. Unrecognized types are kept (normalized) and match no capability
// except BOTH.
func ParseStationType(s string) StationType {
	return StationType(strings.ToUpper(strings.TrimSpace(s)))
}

type Station struct {
	ID    string      `json:"id"`
	Type  StationType `json:"type"`
	Name  string      `json:"name,omitempty"`
	OrgID string      `json:"org_id,omitempty"`
}

// OwnerCapability scopes which station types an owner's report may include.
type OwnerCapability string

const (
	CapabilityCharge OwnerCapability = "CHARGE"
	CapabilitySwap   OwnerCapability = "SWAP"
	CapabilityBoth   OwnerCapability = "BOTH"
)

// ParseOwnerCapability accepts CHARGE, SWAP or BOTH in any case. An empty
// value means BOTH.
func ParseOwnerCapability(s string) (OwnerCapability, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(CapabilityBoth):
		return CapabilityBoth, nil
	case string(CapabilityCharge):
		return CapabilityCharge, nil
	case string(CapabilitySwap):
		return CapabilitySwap, nil
	default:
		return "", fmt.Errorf("invalid owner capability %q", s)
	}
}

// CapabilityAllowsStation reports whether a station of the given type is in
// scope for the capability. BOTH (and the zero value) allows every type.
func CapabilityAllowsStation(capability OwnerCapability, stationType StationType) bool {
	switch capability {
	case CapabilityCharge:
		return stationType == StationTypeCharge
	case CapabilitySwap:
		return stationType == StationTypeSwap
	default:
		return true
	}
}
