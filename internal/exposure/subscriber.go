// Package exposure implements the event bus: subscribers register to
// receive matching events, and publish streams at-most-once deliveries to
// each subscriber's HTTP endpoint.
package exposure

import (
	"github.com/google/uuid"

	"github.com/mnedge/emulator/internal/eventbus"
)

// Subscriber is a registered HTTP endpoint interested in one event kind for
// a set of user ids. The delivered set lives in Bus, bounded by
// an otter cache, rather than on Subscriber itself, so that a subscriber
// with an unbounded event history can never grow memory without limit.
type Subscriber struct {
	ID             string
	NotifyEndpoint string
	Kind           eventbus.Kind
	UserIDs        map[uint32]struct{}
}

// NewSubscriber creates a Subscriber with a fresh id.
func NewSubscriber(notifyEndpoint string, kind eventbus.Kind, userIDs []uint32) *Subscriber {
	ids := make(map[uint32]struct{}, len(userIDs))
	for _, id := range userIDs {
		ids[id] = struct{}{}
	}
	return &Subscriber{
		ID:             uuid.NewString(),
		NotifyEndpoint: notifyEndpoint,
		Kind:           kind,
		UserIDs:        ids,
	}
}

// wantsUser reports whether this subscriber cares about userID.
func (s *Subscriber) wantsUser(userID uint32) bool {
	_, ok := s.UserIDs[userID]
	return ok
}
