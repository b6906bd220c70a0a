package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

// Ownership registry errors.
var (
	ErrHubNotFound  = errors.New("hub not found")
	ErrOwnedByOther = errors.New("hub owned by another truck")
	ErrHubCompleted = errors.New("hub already completed")
)

// HubAvailable reports whether a hub may be claimed: it is not the depot,
// still has demand, is not delivered and is UNASSIGNED.
func (s *State) HubAvailable(h *model.Hub) bool {
	if h.ID == s.DepotID {
		return false
	}
	if h.Delivered || h.DemandQuantity <= 0 {
		return false
	}
	return h.OwnershipState == model.OwnershipUnassigned
}

// AssignHub grants exclusive ownership of a hub to a truck. This is the
// single choke point for every allocation flow: the commit planner, the local
// decision engine and the escalation handler all claim through here.
// Assigning a hub the truck already owns succeeds without mutation.
func (s *State) AssignHub(hubID, truckID string) error {
	h, ok := s.Hubs[hubID]
	if !ok {
		return fmt.Errorf("assign %s: %w", hubID, ErrHubNotFound)
	}
	switch h.OwnershipState {
	case model.OwnershipAssigned:
		if h.OwnerTruckID == truckID {
			return nil
		}
		return fmt.Errorf("assign %s to %s: held by %s: %w", hubID, truckID, h.OwnerTruckID, ErrOwnedByOther)
	case model.OwnershipCompleted:
		return fmt.Errorf("assign %s: %w", hubID, ErrHubCompleted)
	}
	h.OwnershipState = model.OwnershipAssigned
	h.OwnerTruckID = truckID
	return nil
}

// ReleaseHub clears ownership. With completed=true the hub transitions to
// COMPLETED and is marked delivered; otherwise it returns to UNASSIGNED
// (cancellation path).
func (s *State) ReleaseHub(hubID string, completed bool) error {
	h, ok := s.Hubs[hubID]
	if !ok {
		return fmt.Errorf("release %s: %w", hubID, ErrHubNotFound)
	}
	if completed {
		h.OwnershipState = model.OwnershipCompleted
		h.Delivered = true
	} else {
		h.OwnershipState = model.OwnershipUnassigned
	}
	h.OwnerTruckID = ""
	return nil
}

// OwnedBy returns the hubs currently ASSIGNED to the given truck, in stable
// order.
func (s *State) OwnedBy(truckID string) []*model.Hub {
	var out []*model.Hub
	for _, h := range s.Hubs {
		if h.OwnershipState == model.OwnershipAssigned && h.OwnerTruckID == truckID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
