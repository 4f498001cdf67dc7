// Package reducer folds update events into property tree snapshots.
//
// Every reducer is a pure function of (previous state, event). The previous
// state and the event are never modified. A transition that changes anything
// returns freshly built values, so a consumer can detect change by comparing
// pointers; an event that does not apply returns the previous state itself.
//
// # Transitions
//
//	StartListening   listeners + 1
//	StopListening    listeners - 1, clamped at 0
//	UpdateProperty   owner rebuilt from the event node, listeners reset to 0
//
// UpdateProperty rebuilds the whole subtree: properties come from the
// property reducer and every sub-owner is reduced recursively from its own
// node. Listener counts of the replaced subtree are dropped.
package reducer

import (
	"slices"

	"github.com/scenegraph-protocol/scenegraph-go/pkg/model"
)

// ReduceOwner applies ev to a single owner. prev may be nil for an owner
// that does not exist yet.
func ReduceOwner(prev *model.Owner, ev Event) *model.Owner {
	switch ev.Type {
	case EventStartListening:
		if prev == nil {
			return nil
		}
		next := prev.Clone()
		next.Listeners = prev.Listeners + 1
		return next

	case EventStopListening:
		if prev == nil {
			return nil
		}
		next := prev.Clone()
		next.Listeners = max(prev.Listeners-1, 0)
		return next

	case EventUpdateProperty:
		if ev.Node == nil {
			return prev
		}
		return buildOwner(ev)

	default:
		return prev
	}
}

func buildOwner(ev Event) *model.Owner {
	node := ev.Node

	tag := slices.Clone(node.Tag)
	if tag == nil {
		tag = []string{}
	}

	subowners := make([]model.Owner, 0, len(node.Subowners))
	for i := range node.Subowners {
		sub := ReduceOwner(nil, ev.withNode(&node.Subowners[i]))
		subowners = append(subowners, *sub)
	}

	return &model.Owner{
		Name:       node.Name,
		Properties: ReduceProperties(nil, ev),
		Subowners:  subowners,
		Tag:        tag,
		Listeners:  0,
	}
}

// ReduceProperties is the property reducer an owner delegates to. On
// UpdateProperty it returns deep copies of the node's properties (never nil);
// any other event leaves prev unchanged.
func ReduceProperties(prev []model.Property, ev Event) []model.Property {
	if ev.Type != EventUpdateProperty || ev.Node == nil {
		return prev
	}
	props := model.CloneProperties(ev.Node.Properties)
	if props == nil {
		props = []model.Property{}
	}
	return props
}
