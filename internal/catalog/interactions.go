package catalog

import "github.com/temcen/quickrec/pkg/models"

// InteractionLog is an immutable snapshot of historical events.
type InteractionLog struct {
	events []models.InteractionEvent
}

func NewInteractionLog(events []models.InteractionEvent) *InteractionLog {
	l := &InteractionLog{events: make([]models.InteractionEvent, len(events))}
	copy(l.events, events)
	return l
}

func (l *InteractionLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.events)
}

// CountByType tallies events of type t per product id. Orphan product ids are kept;
// callers decide whether to join them against a catalog.
func (l *InteractionLog) CountByType(t models.InteractionType) map[int64]int {
	counts := make(map[int64]int)
	if l == nil {
		return counts
	}
	for _, e := range l.events {
		if e.Type == t {
			counts[e.ProductID]++
		}
	}
	return counts
}
