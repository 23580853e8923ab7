package overlay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshna21/DevOps-project/core/overlay"
	"github.com/roshna21/DevOps-project/tests"
)

var ctx = context.Background()

type brokenStore struct{}

func (brokenStore) Load(context.Context, overlay.Namespace, string) (map[string]overlay.Entry, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Put(context.Context, overlay.Namespace, string, string, overlay.Entry) error {
	return errors.New("connection refused")
}
func (brokenStore) Delete(context.Context, overlay.Namespace, string, string) error {
	return errors.New("connection refused")
}

func TestCache_SetMergesPartialFields(t *testing.T) {
	c := overlay.New(overlay.NewMemoryStore(), overlay.Marks, testutil.NewLogger(t))

	assert.Empty(t, c.Get(ctx, "S1"))

	c.Set(ctx, "S1", "Math", overlay.Entry{Internal1: overlay.Int(30)})
	c.Set(ctx, "S1", "Math", overlay.Entry{Internal3: overlay.Int(12)})
	c.Set(ctx, "S1", "Math", overlay.Entry{}) // no-op

	got := c.Get(ctx, "S1")
	require.Contains(t, got, "Math")
	assert.Equal(t, overlay.Entry{Internal1: overlay.Int(30), Internal3: overlay.Int(12)}, got["Math"])

	// other students untouched
	assert.Empty(t, c.Get(ctx, "S2"))
}

func TestCache_MergeOverTruth(t *testing.T) {
	c := overlay.New(overlay.NewMemoryStore(), overlay.Marks, testutil.NewLogger(t))
	c.Set(ctx, "S1", "Math", overlay.Entry{Internal1: overlay.Int(35)})
	c.Set(ctx, "S1", "Physics", overlay.Entry{Internal2: overlay.Int(20)})

	truth := map[string]overlay.Entry{
		"Math":      {Internal1: overlay.Int(30), Internal2: overlay.Int(28)},
		"Chemistry": {Internal3: overlay.Int(39)},
	}

	tests := []struct {
		name    string
		subject string
		want    overlay.Entry
	}{
		{name: "overlay wins field by field", subject: "Math", want: overlay.Entry{Internal1: overlay.Int(35), Internal2: overlay.Int(28)}},
		{name: "overlay-only subject", subject: "Physics", want: overlay.Entry{Internal2: overlay.Int(20)}},
		{name: "truth-only subject", subject: "Chemistry", want: overlay.Entry{Internal3: overlay.Int(39)}},
	}
	merged := c.MergeOverTruth(ctx, "S1", truth)
	assert.Len(t, merged, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, merged[tt.subject])
		})
	}

	// truth is not mutated
	assert.Equal(t, 30, *truth["Math"].Internal1)
}

func TestCache_NamespacesAreIndependent(t *testing.T) {
	store := overlay.NewMemoryStore()
	marks := overlay.New(store, overlay.Marks, testutil.NewLogger(t))
	att := overlay.New(store, overlay.Attendance, testutil.NewLogger(t))

	marks.Set(ctx, "S1", "Math", overlay.Entry{Internal1: overlay.Int(30)})
	assert.Empty(t, att.Get(ctx, "S1"))
}

func TestCache_Settle(t *testing.T) {
	c := overlay.New(overlay.NewMemoryStore(), overlay.Attendance, testutil.NewLogger(t))
	c.Set(ctx, "S1", "Math", overlay.Entry{Attended: overlay.Int(10), Held: overlay.Int(12)})
	c.Set(ctx, "S1", "Physics", overlay.Entry{Attended: overlay.Int(5), Held: overlay.Int(8)})

	c.Settle(ctx, "S1", map[string]overlay.Entry{
		"Math":    {Attended: overlay.Int(10), Held: overlay.Int(12)},
		"Physics": {Attended: overlay.Int(4), Held: overlay.Int(8)},
	})

	got := c.Get(ctx, "S1")
	assert.NotContains(t, got, "Math")
	assert.Contains(t, got, "Physics")
}

func TestCache_StoreFailuresAreSwallowed(t *testing.T) {
	logger := testutil.NewLogger(t)
	c := overlay.New(brokenStore{}, overlay.Marks, logger)

	c.Set(ctx, "S1", "Math", overlay.Entry{Internal1: overlay.Int(30)})
	assert.Empty(t, c.Get(ctx, "S1"))

	merged := c.MergeOverTruth(ctx, "S1", map[string]overlay.Entry{"Math": {Internal1: overlay.Int(20)}})
	assert.Equal(t, 20, *merged["Math"].Internal1)
	assert.True(t, logger.Count("ERROR") >= 3)
}

func TestEntry_CoveredBy(t *testing.T) {
	tests := []struct {
		name  string
		entry overlay.Entry
		truth overlay.Entry
		want  bool
	}{
		{name: "empty entry", entry: overlay.Entry{}, truth: overlay.Entry{}, want: true},
		{name: "equal field", entry: overlay.Entry{Internal1: overlay.Int(3)}, truth: overlay.Entry{Internal1: overlay.Int(3), Internal2: overlay.Int(4)}, want: true},
		{name: "missing in truth", entry: overlay.Entry{Internal1: overlay.Int(3)}, truth: overlay.Entry{}, want: false},
		{name: "different value", entry: overlay.Entry{Held: overlay.Int(3)}, truth: overlay.Entry{Held: overlay.Int(4)}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.CoveredBy(tt.truth))
		})
	}
}
