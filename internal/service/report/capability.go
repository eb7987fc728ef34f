package report

import (
	"github.com/seu-repo/sigec-reports/internal/domain"
)

// ScopedSessions is the result of capability filtering.
type ScopedSessions struct {
	Sessions       []domain.Session
	ScopedStations []domain.Station
}

// FilterByCapability keeps sessions whose station is eligible for the
// capability. It fails open: with no stations known every session passes,
// and a session whose station is unknown is kept. A known but ineligible
// station excludes its sessions.
func FilterByCapability(sessions []domain.Session, stations []domain.Station, capability domain.OwnerCapability) ScopedSessions {
	if len(stations) == 0 {
		return ScopedSessions{Sessions: sessions}
	}

	known := make(map[string]domain.StationType, len(stations))
	scoped := make([]domain.Station, 0, len(stations))
	for _, st := range stations {
		known[st.ID] = st.Type
		if domain.CapabilityAllowsStation(capability, st.Type) {
			scoped = append(scoped, st)
		}
	}

	kept := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		stationType, ok := known[s.StationID]
		if !ok || domain.CapabilityAllowsStation(capability, stationType) {
			kept = append(kept, s)
		}
	}

	return ScopedSessions{Sessions: kept, ScopedStations: scoped}
}
