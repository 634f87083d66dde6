// Package flow reconstructs fund lineage over the linked-event graph: the
// chain of events that funded a target, the target itself, then everything
// the target went on to fund.
package flow

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"compliance-service/internal/domain"
)

// DefaultMaxNodes bounds a single trace when no budget is configured.
const DefaultMaxNodes = 1000

// EventStore is the persistence surface the tracer needs. Children must be
// returned in a stable order so that repeated traces over an unchanged store
// are identical.
type EventStore interface {
	GetByID(ctx context.Context, eventID string) (*domain.UnifiedEvent, error)
	ListByLinkedEventID(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error)
}

type Tracer struct {
	store    EventStore
	maxNodes int
}

func NewTracer(store EventStore, maxNodes int) *Tracer {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Tracer{store: store, maxNodes: maxNodes}
}

// Trace returns the full lineage of eventID: ancestors oldest-first, then the
// target, then descendants in depth-first order. A missing target yields
// domain.ErrEventNotFound; a dangling parent pointer silently truncates the
// ancestor chain. Cycles and over-budget graphs terminate with the partial
// lineage gathered so far.
func (t *Tracer) Trace(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error) {
	target, err := t.store.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load trace target: %w", err)
	}

	visited := map[string]bool{target.EventID: true}

	ancestors, err := t.traceBackward(ctx, target, visited)
	if err != nil {
		return nil, err
	}

	path := make([]domain.UnifiedEvent, 0, len(ancestors)+1)
	path = append(path, ancestors...)
	path = append(path, *target)

	path, err = t.traceForward(ctx, target.EventID, path, visited)
	if err != nil {
		return nil, err
	}

	return path, nil
}

// traceBackward follows linked_event_id up the funding chain, returning the
// ancestors oldest-first.
func (t *Tracer) traceBackward(ctx context.Context, from *domain.UnifiedEvent, visited map[string]bool) ([]domain.UnifiedEvent, error) {
	var ancestors []domain.UnifiedEvent

	current := from
	for current.LinkedEventID != nil && *current.LinkedEventID != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(visited) >= t.maxNodes {
			log.WithField("event_id", from.EventID).Warn("Fund flow trace hit node budget during backward walk")
			break
		}
		parentID := *current.LinkedEventID
		if visited[parentID] {
			log.WithFields(log.Fields{
				"event_id":  current.EventID,
				"parent_id": parentID,
			}).Warn("Cyclic linkage detected during backward walk, truncating")
			break
		}

		parent, err := t.store.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				// Dangling pointer: the chain ends here.
				break
			}
			return nil, fmt.Errorf("failed to load linked event %s: %w", parentID, err)
		}

		visited[parent.EventID] = true
		ancestors = append([]domain.UnifiedEvent{*parent}, ancestors...)
		current = parent
	}

	return ancestors, nil
}

// traceForward appends all events funded by eventID, depth-first, recursing
// into each child before moving to the next sibling.
func (t *Tracer) traceForward(ctx context.Context, eventID string, path []domain.UnifiedEvent, visited map[string]bool) ([]domain.UnifiedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children, err := t.store.ListByLinkedEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events linked to %s: %w", eventID, err)
	}

	for _, child := range children {
		if visited[child.EventID] {
			log.WithFields(log.Fields{
				"event_id": child.EventID,
				"parent":   eventID,
			}).Warn("Cyclic linkage detected during forward walk, skipping")
			continue
		}
		if len(visited) >= t.maxNodes {
			log.WithField("event_id", eventID).Warn("Fund flow trace hit node budget during forward walk")
			return path, nil
		}

		visited[child.EventID] = true
		path = append(path, child)

		path, err = t.traceForward(ctx, child.EventID, path, visited)
		if err != nil {
			return nil, err
		}
	}

	return path, nil
}
