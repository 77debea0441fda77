package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/reqsmith/pkg/catalog"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

func req(name, spec, source string) pydeps.Requirement {
	return pydeps.Requirement{Name: pydeps.Normalize(name), RawName: name, Spec: spec, Source: source}
}

func TestReconcile_MergeIdentical(t *testing.T) {
	r := New(catalog.Default(), AutoSkip{})
	set, err := r.Reconcile(context.Background(), []pydeps.Requirement{
		req("requests", ">=2.0", "a/requirements.txt"),
		req("requests", ">=2.0", "b/requirements.txt"),
		req("flask", "", "app.py"),
		req("flask", "", "api.py"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	got, ok := set.Get("requests")
	require.True(t, ok)
	assert.Equal(t, ">=2.0", got.Spec)
	assert.Equal(t, "a/requirements.txt", got.Source)
}

func TestReconcile_ConstrainedWinsSilently(t *testing.T) {
	prompted := false
	res := ResolverFunc(func(context.Context, Conflict) (Decision, error) {
		prompted = true
		return DecisionKeep, nil
	})

	r := New(catalog.Default(), res)

	// Unconstrained first, constrained later.
	set, err := r.Reconcile(context.Background(), []pydeps.Requirement{
		req("requests", "", "app.py"),
		req("requests", ">=2.0", "requirements.txt"),
	})
	require.NoError(t, err)
	got, _ := set.Get("requests")
	assert.Equal(t, ">=2.0", got.Spec)

	// Constrained first, unconstrained later.
	set, err = r.Reconcile(context.Background(), []pydeps.Requirement{
		req("requests", ">=2.0", "requirements.txt"),
		req("requests", "", "app.py"),
	})
	require.NoError(t, err)
	got, _ = set.Get("requests")
	assert.Equal(t, ">=2.0", got.Spec)

	assert.False(t, prompted, "constrained vs unconstrained must not prompt")
}

func TestReconcile_ConflictPrompt(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		wantSpec string
		wantSrc  string
	}{
		{"keep existing", DecisionKeep, ">=2.0", "requirements.txt"},
		{"use new", DecisionReplace, "==1.9", "legacy/requirements.txt"},
		{"skip constraint", DecisionUnconstrained, "", "requirements.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var conflicts []Conflict
			res := ResolverFunc(func(_ context.Context, c Conflict) (Decision, error) {
				conflicts = append(conflicts, c)
				return tt.decision, nil
			})

			r := New(catalog.Default(), res)
			set, err := r.Reconcile(context.Background(), []pydeps.Requirement{
				req("requests", ">=2.0", "requirements.txt"),
				req("requests", "==1.9", "legacy/requirements.txt"),
			})
			require.NoError(t, err)

			require.Len(t, conflicts, 1, "exactly one prompt expected")
			assert.Equal(t, "requests", conflicts[0].Name)
			assert.Equal(t, "requirements.txt", conflicts[0].Existing.Source)
			assert.Equal(t, "legacy/requirements.txt", conflicts[0].Incoming.Source)

			assert.Equal(t, 1, set.Len(), "one entry after resolution")
			got, ok := set.Get("requests")
			require.True(t, ok)
			assert.Equal(t, tt.wantSpec, got.Spec)
			assert.Equal(t, tt.wantSrc, got.Source)
		})
	}
}

func TestReconcile_BuiltinsDropped(t *testing.T) {
	r := New(catalog.Default(), AutoSkip{})
	set, err := r.Reconcile(context.Background(), []pydeps.Requirement{
		req("os", "", "app.py"),
		req("typing", ">=3.7", "requirements.txt"),
		req("requests", "", "app.py"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, set.Len())
	_, ok := set.Get("requests")
	assert.True(t, ok)
}

func TestReconcile_InsertionOrder(t *testing.T) {
	r := New(catalog.Default(), AutoSkip{})
	set, err := r.Reconcile(context.Background(), []pydeps.Requirement{
		req("zope", "", "a.py"),
		req("attrs", "", "b.py"),
		req("zope", ">=5", "requirements.txt"),
		req("mako", "", "c.py"),
	})
	require.NoError(t, err)

	var order []string
	for _, r := range set.Requirements() {
		order = append(order, r.Name)
	}
	assert.Equal(t, []string{"zope", "attrs", "mako"}, order)
}

func TestReconcile_Policies(t *testing.T) {
	input := []pydeps.Requirement{
		req("requests", ">=2.0", "requirements.txt"),
		req("requests", "==1.9", "legacy.txt"),
	}

	t.Run("auto skip", func(t *testing.T) {
		set, err := New(catalog.Default(), AutoSkip{}).Reconcile(context.Background(), input)
		require.NoError(t, err)
		got, _ := set.Get("requests")
		assert.Equal(t, "", got.Spec)
	})

	t.Run("auto prefer constrained", func(t *testing.T) {
		set, err := New(catalog.Default(), AutoPreferConstrained{}).Reconcile(context.Background(), input)
		require.NoError(t, err)
		got, _ := set.Get("requests")
		assert.Equal(t, ">=2.0", got.Spec)
	})
}

func TestReconcile_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ResolverFunc(func(ctx context.Context, _ Conflict) (Decision, error) {
		return DecisionKeep, ctx.Err()
	})

	_, err := New(catalog.Default(), res).Reconcile(ctx, []pydeps.Requirement{
		req("requests", ">=2.0", "a.txt"),
		req("requests", "==1.9", "b.txt"),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
