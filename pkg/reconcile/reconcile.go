// Package reconcile folds requirement candidates from many files into a
// single ordered set with one version constraint per package.
//
// Merging is silent wherever one outcome is strictly more informative:
// identical specs collapse, and a constrained spec beats an unconstrained
// one. Two differing non-empty specs are a genuine conflict and are
// delegated to a Resolver, so the merge logic stays testable without a
// terminal attached.
package reconcile

import (
	"context"

	"github.com/matzehuels/reqsmith/pkg/catalog"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

// Decision is the outcome of a conflict resolution.
type Decision int

const (
	// DecisionKeep keeps the first-seen requirement unchanged.
	DecisionKeep Decision = iota
	// DecisionReplace adopts the newly encountered requirement.
	DecisionReplace
	// DecisionUnconstrained drops the version constraint entirely.
	DecisionUnconstrained
)

// String returns a short label for logs and prompts.
func (d Decision) String() string {
	switch d {
	case DecisionKeep:
		return "keep existing"
	case DecisionReplace:
		return "use new"
	case DecisionUnconstrained:
		return "skip constraint"
	default:
		return "unknown"
	}
}

// Conflict describes two incompatible version specs for the same package.
type Conflict struct {
	Name     string             // normalized package name
	Existing pydeps.Requirement // first-seen requirement
	Incoming pydeps.Requirement // newly encountered requirement
}

// Resolver decides how a conflict is settled. Implementations block until
// a decision is available; the interactive variant lives in the CLI.
type Resolver interface {
	Resolve(ctx context.Context, c Conflict) (Decision, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, c Conflict) (Decision, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, c Conflict) (Decision, error) {
	return f(ctx, c)
}

// AutoSkip resolves every conflict by dropping the version constraint.
// This is the non-interactive default policy.
type AutoSkip struct{}

// Resolve always returns DecisionUnconstrained.
func (AutoSkip) Resolve(context.Context, Conflict) (Decision, error) {
	return DecisionUnconstrained, nil
}

// AutoPreferConstrained keeps the first-seen constraint when both sides
// are constrained. The constrained-beats-unconstrained rule is applied
// before any Resolver runs, so by the time this policy is consulted both
// specs are non-empty and keeping the first is the stable choice.
type AutoPreferConstrained struct{}

// Resolve always returns DecisionKeep.
func (AutoPreferConstrained) Resolve(context.Context, Conflict) (Decision, error) {
	return DecisionKeep, nil
}

// Set is the reconciled requirement set. Iteration order is the insertion
// order of first encounter, anchored to the scanner's traversal order.
type Set struct {
	order   []string
	entries map[string]pydeps.Requirement
}

// NewSet creates an empty reconciled set.
func NewSet() *Set {
	return &Set{entries: make(map[string]pydeps.Requirement)}
}

// Get returns the requirement for a normalized name.
func (s *Set) Get(name string) (pydeps.Requirement, bool) {
	r, ok := s.entries[name]
	return r, ok
}

// Len returns the number of reconciled packages.
func (s *Set) Len() int { return len(s.order) }

// Requirements returns the reconciled requirements in insertion order.
func (s *Set) Requirements() []pydeps.Requirement {
	out := make([]pydeps.Requirement, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name])
	}
	return out
}

func (s *Set) put(r pydeps.Requirement) {
	if _, ok := s.entries[r.Name]; !ok {
		s.order = append(s.order, r.Name)
	}
	s.entries[r.Name] = r
}

// Reconciler merges requirements into a Set using a conflict policy.
type Reconciler struct {
	Catalog  *catalog.Catalog
	Resolver Resolver

	// Logf receives merge decisions for progress output (optional).
	Logf func(format string, args ...any)
}

// New creates a reconciler. A nil resolver defaults to AutoSkip.
func New(cat *catalog.Catalog, res Resolver) *Reconciler {
	if res == nil {
		res = AutoSkip{}
	}
	return &Reconciler{
		Catalog:  cat,
		Resolver: res,
		Logf:     func(string, ...any) {},
	}
}

// Reconcile folds reqs, in order, into a reconciled set. Requirements
// whose name is satisfied by the standard library are dropped even if
// they slipped through extraction. The only error paths are resolver
// failures and context cancellation while a conflict is pending.
func (r *Reconciler) Reconcile(ctx context.Context, reqs []pydeps.Requirement) (*Set, error) {
	set := NewSet()

	for _, req := range reqs {
		if r.Catalog != nil && (r.Catalog.IsBuiltin(req.RawName) || r.Catalog.IsBuiltin(req.Name)) {
			r.Logf("dropping %s: satisfied by the standard library", req.RawName)
			continue
		}

		existing, ok := set.Get(req.Name)
		if !ok {
			set.put(req)
			continue
		}

		switch {
		case existing.Spec == req.Spec:
			// Same constraint (or both unconstrained): nothing to do.
		case req.Spec == "":
			// Existing constraint is strictly more informative.
		case existing.Spec == "":
			r.Logf("%s: adopting constraint %s from %s", req.Name, req.Spec, req.Source)
			set.put(req)
		default:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			decision, err := r.Resolver.Resolve(ctx, Conflict{
				Name:     req.Name,
				Existing: existing,
				Incoming: req,
			})
			if err != nil {
				return nil, err
			}
			r.Logf("%s: %s vs %s resolved as %q", req.Name, existing.Spec, req.Spec, decision)
			switch decision {
			case DecisionReplace:
				set.put(req)
			case DecisionUnconstrained:
				existing.Spec = ""
				set.put(existing)
			}
		}
	}

	return set, nil
}
