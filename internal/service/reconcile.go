package service

import (
	"slices"

	domainerrors "github.com/quillhq/quill-server/internal/errors"
)

// ReconcilePlan is the minimal set of link changes that moves a post's author
// set from its current state to a target state. ToAdd and ToRemove are
// disjoint and sorted ascending.
type ReconcilePlan struct {
	ToAdd    []int64
	ToRemove []int64
}

// Empty reports whether applying the plan changes nothing.
func (p ReconcilePlan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Reconcile computes the link changes that turn current into target.
// Only ids missing from current are added and only ids absent from target are
// removed. An empty target is rejected regardless of current, so a post can
// never be left without an author. Duplicate ids in either input collapse.
func Reconcile(current, target []int64) (ReconcilePlan, error) {
	if len(target) == 0 {
		return ReconcilePlan{}, domainerrors.Validation("a post must keep at least one author")
	}

	want := make(map[int64]struct{}, len(target))
	for _, id := range target {
		if id <= 0 {
			return ReconcilePlan{}, domainerrors.Validationf("author id %d must be a positive number", id)
		}
		want[id] = struct{}{}
	}

	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	plan := ReconcilePlan{ToAdd: []int64{}, ToRemove: []int64{}}
	for id := range want {
		if _, ok := have[id]; !ok {
			plan.ToAdd = append(plan.ToAdd, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			plan.ToRemove = append(plan.ToRemove, id)
		}
	}

	slices.Sort(plan.ToAdd)
	slices.Sort(plan.ToRemove)
	return plan, nil
}
