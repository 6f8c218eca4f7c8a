package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/logger"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/events/bus"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/persistence/testdb"
	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/user/store"
	v1 "github.com/samatacc/buildtrack-pro-emer-test-sub004/pkg/api/v1"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *bus.MemoryEventBus) {
	t.Helper()
	pool := testdb.New(t)
	testdb.SeedUser(t, pool, "u1")
	eb := bus.NewMemoryEventBus(logger.NewNop())
	t.Cleanup(eb.Close)
	return NewService(store.NewSQLRepository(pool), eb, logger.NewNop()), eb
}

func dashboard(id, name string, widgetTypes ...string) *v1.Dashboard {
	d := &v1.Dashboard{
		ID:      id,
		Name:    name,
		Layouts: map[v1.Breakpoint][]v1.LayoutItem{},
	}
	for i, wt := range widgetTypes {
		wid := fmt.Sprintf("%s-%d", wt, i)
		d.Widgets = append(d.Widgets, v1.WidgetInstance{ID: wid, Type: wt, Visible: true})
		d.Layouts[v1.BreakpointLG] = append(d.Layouts[v1.BreakpointLG], v1.LayoutItem{I: wid, X: 0, Y: i * 2, W: 4, H: 2})
	}
	return d
}

var ignoreStamps = cmpopts.IgnoreFields(v1.Dashboard{}, "Revision", "UpdatedAt")

func TestSaveAppendsThenReplacesByID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", dashboard("main", "Main", "active_projects"), nil)
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", dashboard("site", "Site", "weather"), nil)
	require.NoError(t, err)

	replacement := dashboard("main", "Main v2", "task_summary", "budget_overview")
	saved, err := svc.Save(ctx, "u1", replacement, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Revision)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Replace keeps array position and leaves siblings untouched.
	if diff := cmp.Diff(*replacement, list[0], ignoreStamps); diff != "" {
		t.Errorf("replaced dashboard mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(*dashboard("site", "Site", "weather"), list[1], ignoreStamps); diff != "" {
		t.Errorf("sibling dashboard changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(1), list[1].Revision)
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.Get(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Get(ctx, "u1", "")
	require.NoError(t, err)
	assert.Nil(t, got, "no default dashboard yet")

	d := dashboard("main", "Main", "weather")
	d.IsDefault = true
	_, err = svc.Save(ctx, "u1", d, nil)
	require.NoError(t, err)

	got, err = svc.Get(ctx, "u1", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "main", got.ID)

	_, err = svc.Get(ctx, "ghost", "main")
	assert.True(t, apperr.IsNotFound(err))
}

func TestSaveRequiresID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Save(context.Background(), "u1", &v1.Dashboard{Name: "no id"}, nil)
	assert.True(t, apperr.IsBadRequest(err))
	_, err = svc.Save(context.Background(), "u1", nil, nil)
	assert.True(t, apperr.IsBadRequest(err))
}

func TestSaveCompareAndSwap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", dashboard("main", "Main"), ptr(int64(1)))
	assert.True(t, apperr.IsConflict(err), "creating with a non-zero expectation conflicts")

	first, err := svc.Save(ctx, "u1", dashboard("main", "Main"), ptr(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Revision)

	// Two tabs both loaded revision 1; the second save loses.
	_, err = svc.Save(ctx, "u1", dashboard("main", "Tab A"), ptr(int64(1)))
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", dashboard("main", "Tab B"), ptr(int64(1)))
	assert.True(t, apperr.IsConflict(err))

	// Without an expectation the last writer wins.
	_, err = svc.Save(ctx, "u1", dashboard("main", "Tab B"), nil)
	require.NoError(t, err)
	got, err := svc.Get(ctx, "u1", "main")
	require.NoError(t, err)
	assert.Equal(t, "Tab B", got.Name)
	assert.Equal(t, int64(3), got.Revision)
}

func TestConcurrentSavesOfDifferentDashboardsAreKept(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Save(ctx, "u1", dashboard(fmt.Sprintf("d%d", i), "D"), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 8)
}

func TestSaveLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < MaxDashboards; i++ {
		_, err := svc.Save(ctx, "u1", dashboard(fmt.Sprintf("d%d", i), "D"), nil)
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, "u1", dashboard("one-too-many", "D"), nil)
	assert.True(t, apperr.IsBadRequest(err))

	// Replacing an existing one is still allowed at the limit.
	_, err = svc.Save(ctx, "u1", dashboard("d0", "Renamed"), nil)
	assert.NoError(t, err)
}

func TestDefaultFlagIsExclusive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := dashboard("a", "A")
	a.IsDefault = true
	_, err := svc.Save(ctx, "u1", a, nil)
	require.NoError(t, err)
	b := dashboard("b", "B")
	b.IsDefault = true
	_, err = svc.Save(ctx, "u1", b, nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = svc.SetDefault(ctx, "u1", "a")
	require.NoError(t, err)
	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	defaults := 0
	for _, d := range list {
		if d.IsDefault {
			defaults++
			assert.Equal(t, "a", d.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	_, err = svc.SetDefault(ctx, "u1", "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", dashboard("a", "A"), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u1", "a"))
	assert.True(t, apperr.IsNotFound(svc.Delete(ctx, "u1", "a")))

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSavePublishesEvent(t *testing.T) {
	svc, eb := newTestService(t)
	received := make(chan *bus.Event, 1)
	_, err := eb.Subscribe("user.u1.>", func(ctx context.Context, e *bus.Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), "u1", dashboard("main", "Main"), nil)
	require.NoError(t, err)

	select {
	case e := <-received:
		assert.Equal(t, "dashboard.saved", e.Type)
		assert.Equal(t, "main", e.String("dashboard_id"))
	case <-time.After(time.Second):
		t.Fatal("no dashboard.saved event")
	}
}
