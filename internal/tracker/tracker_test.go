package tracker

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/task-tracker/internal/model"
	"github.com/Makepad-fr/task-tracker/internal/store/jsonstore"
)

// --- fakes ---

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type countingStore struct {
	Store
	saves int
}

func (s *countingStore) Save(c *model.Collection) error {
	s.saves++
	return s.Store.Save(c)
}

type failingStore struct {
	loadErr, saveErr error
}

func (s failingStore) Load() (*model.Collection, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	c := model.NewCollection()
	c.Append("existing", nil, time.Now())
	return c, nil
}

func (s failingStore) Save(*model.Collection) error { return s.saveErr }

func strPtr(s string) *string { return &s }

func newTestTracker(t *testing.T) (*Tracker, *jsonstore.Store) {
	t.Helper()
	store := jsonstore.New(filepath.Join(t.TempDir(), jsonstore.DefaultFileName), nil)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	tr, err := New(store, WithClock(clock.Now))
	require.NoError(t, err)
	return tr, store
}

// --- tests ---

func TestNew_NilStore(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrStoreNil)
}

func TestAdd_SequentialIDs(t *testing.T) {
	tr, store := newTestTracker(t)

	const n = 6
	for want := 1; want <= n; want++ {
		task, err := tr.Add("task", nil)
		require.NoError(t, err)
		assert.Equal(t, want, task.ID)
		assert.Equal(t, model.StatusTodo, task.Status)
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	}

	c, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, n+1, c.NextID)
}

func TestDelete_PreservesOrder(t *testing.T) {
	tr, store := newTestTracker(t)
	for _, title := range []string{"a", "b", "c", "d"} {
		_, err := tr.Add(title, nil)
		require.NoError(t, err)
	}

	res, err := tr.Delete(2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Task.ID)
	assert.False(t, res.CounterReset)

	c, err := store.Load()
	require.NoError(t, err)
	var got []string
	for _, task := range c.Tasks {
		got = append(got, task.Title)
	}
	assert.Equal(t, []string{"a", "c", "d"}, got)
	assert.Equal(t, 5, c.NextID)
}

func TestDelete_NotFoundLeavesFileUntouched(t *testing.T) {
	tr, store := newTestTracker(t)
	_, err := tr.Add("a", nil)
	require.NoError(t, err)
	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	_, err = tr.Delete(99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 99, nf.ID)
	assert.Equal(t, "Task with ID 99 not found", err.Error())

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete_NotFoundDoesNotSave(t *testing.T) {
	store := &countingStore{Store: jsonstore.New(filepath.Join(t.TempDir(), "t.json"), nil)}
	tr, err := New(store)
	require.NoError(t, err)

	_, err = tr.Delete(1)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.saves)
}

func TestDelete_LastTaskResetsCounter(t *testing.T) {
	tr, store := newTestTracker(t)
	for i := 0; i < 3; i++ {
		_, err := tr.Add("x", nil)
		require.NoError(t, err)
	}
	for _, id := range []int{1, 3} {
		res, err := tr.Delete(id)
		require.NoError(t, err)
		assert.False(t, res.CounterReset)
	}

	res, err := tr.Delete(2)
	require.NoError(t, err)
	assert.True(t, res.CounterReset)

	c, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, c.Tasks)
	assert.Equal(t, 1, c.NextID)

	task, err := tr.Add("again", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, task.ID)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		title     *string
		desc      *string
		wantTitle string
		wantDesc  *string
	}{
		{"title only clears description", strPtr("New title"), nil, "New title", nil},
		{"description only keeps title", nil, strPtr("New description"), "Original", strPtr("New description")},
		{"both", strPtr("T"), strPtr("D"), "T", strPtr("D")},
		{"neither clears description", nil, nil, "Original", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTracker(t)
			orig, err := tr.Add("Original", strPtr("Original description"))
			require.NoError(t, err)

			got, err := tr.Update(orig.ID, tt.title, tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.True(t, got.UpdatedAt.After(orig.UpdatedAt))
			assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))

			stored, err := tr.Get(orig.ID)
			require.NoError(t, err)
			assert.Equal(t, got.Title, stored.Title)
			assert.Equal(t, got.Description, stored.Description)
			assert.True(t, got.UpdatedAt.Equal(stored.UpdatedAt))
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	tr, _ := newTestTracker(t)
	_, err := tr.Update(999, strPtr("Title"), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	store := jsonstore.New(filepath.Join(t.TempDir(), "t.json"), nil)
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr, err := New(store, WithClock(func() time.Time { return frozen }))
	require.NoError(t, err)

	added, err := tr.Add("a", nil)
	require.NoError(t, err)
	first, err := tr.MarkDone(added.ID)
	require.NoError(t, err)
	second, err := tr.Update(added.ID, nil, nil)
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(added.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(added.CreatedAt))
}

func TestSetStatus_Unrestricted(t *testing.T) {
	transitions := []struct {
		from, to model.Status
	}{}
	for _, from := range model.Statuses() {
		for _, to := range model.Statuses() {
			transitions = append(transitions, struct{ from, to model.Status }{from, to})
		}
	}

	for _, tc := range transitions {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			tr, _ := newTestTracker(t)
			task, err := tr.Add("x", nil)
			require.NoError(t, err)
			_, err = tr.SetStatus(task.ID, tc.from)
			require.NoError(t, err)

			got, err := tr.SetStatus(task.ID, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
		})
	}
}

func TestMarkInProgressAndDone(t *testing.T) {
	tr, _ := newTestTracker(t)
	task, err := tr.Add("x", nil)
	require.NoError(t, err)

	got, err := tr.MarkDone(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)

	got, err = tr.MarkInProgress(task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	_, err = tr.MarkDone(42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tr.MarkInProgress(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	tr, _ := newTestTracker(t)
	for _, title := range []string{"a", "b", "c", "d"} {
		_, err := tr.Add(title, nil)
		require.NoError(t, err)
	}
	_, err := tr.MarkDone(4)
	require.NoError(t, err)
	_, err = tr.MarkInProgress(2)
	require.NoError(t, err)
	_, err = tr.MarkDone(1)
	require.NoError(t, err)

	all, err := tr.List(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, taskIDs(all))

	for status, want := range map[model.Status][]int{
		model.StatusDone:       {1, 4},
		model.StatusInProgress: {2},
		model.StatusTodo:       {3},
	} {
		got, err := tr.List(&status)
		require.NoError(t, err)
		assert.Equal(t, want, taskIDs(got), status)
	}
}

func TestScenario(t *testing.T) {
	tr, store := newTestTracker(t)

	first, err := tr.Add("Buy groceries", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, model.StatusTodo, first.Status)
	assert.Nil(t, first.Description)

	second, err := tr.Add("Buy groceries", strPtr("Milk, eggs, and bread"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
	require.NotNil(t, second.Description)
	assert.Equal(t, "Milk, eggs, and bread", *second.Description)

	_, err = tr.Delete(1)
	require.NoError(t, err)
	c, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, taskIDs(c.Tasks))
	assert.Equal(t, 3, c.NextID)

	done, err := tr.MarkDone(2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)
	assert.True(t, done.UpdatedAt.After(second.UpdatedAt))

	filter := model.StatusDone
	listed, err := tr.List(&filter)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, taskIDs(listed))
}

func TestStoreErrorsPropagate(t *testing.T) {
	loadErr := errors.New("load boom")
	saveErr := errors.New("save boom")

	tr, err := New(failingStore{loadErr: loadErr})
	require.NoError(t, err)
	_, err = tr.Add("x", nil)
	assert.ErrorIs(t, err, loadErr)
	_, err = tr.List(nil)
	assert.ErrorIs(t, err, loadErr)
	_, err = tr.Get(1)
	assert.ErrorIs(t, err, loadErr)

	tr, err = New(failingStore{saveErr: saveErr})
	require.NoError(t, err)
	_, err = tr.Add("x", nil)
	assert.ErrorIs(t, err, saveErr)
	_, err = tr.Delete(1)
	assert.ErrorIs(t, err, saveErr)
	_, err = tr.MarkDone(1)
	assert.ErrorIs(t, err, saveErr)
}

func TestAdd_IDsExhaustedDoesNotSave(t *testing.T) {
	_, backing := newTestTracker(t)
	require.NoError(t, backing.Save(&model.Collection{Tasks: []model.Task{}, NextID: math.MaxInt}))
	before, err := os.ReadFile(backing.Path())
	require.NoError(t, err)

	store := &countingStore{Store: backing}
	tr, err := New(store)
	require.NoError(t, err)

	_, err = tr.Add("overflow", nil)
	assert.ErrorIs(t, err, model.ErrIDsExhausted)
	assert.Zero(t, store.saves)

	after, err := os.ReadFile(backing.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	c, err := backing.Load()
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, c.NextID)
}

func taskIDs(tasks []model.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
