package model

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"todo", StatusTodo, false},
		{"in-progress", StatusInProgress, false},
		{"inprogress", StatusInProgress, false},
		{"done", StatusDone, false},
		{"DONE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, `"in-progress"`, string(b))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"inprogress"`), &s))
	assert.Equal(t, StatusInProgress, s)

	assert.Error(t, json.Unmarshal([]byte(`"blocked"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`3`), &s))
}

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	task := NewTask(7, "Buy groceries", nil, now)

	assert.Equal(t, 7, task.ID)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Nil(t, task.Description)
	assert.Equal(t, time.UTC, task.CreatedAt.Location())
	assert.True(t, task.CreatedAt.Equal(now))
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestTouchIsStrictlyIncreasing(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := NewTask(1, "x", nil, now)

	task.Touch(now)
	assert.True(t, task.UpdatedAt.After(task.CreatedAt))

	prev := task.UpdatedAt
	task.Touch(now.Add(-time.Hour))
	assert.True(t, task.UpdatedAt.After(prev))

	later := now.Add(time.Minute)
	task.Touch(later)
	assert.Equal(t, later, task.UpdatedAt)
}

func TestCollectionAppendAssignsSequentialIDs(t *testing.T) {
	c := NewCollection()
	now := time.Now()
	for want := 1; want <= 5; want++ {
		got, err := c.Append("task", nil, now)
		require.NoError(t, err)
		assert.Equal(t, want, got.ID)
	}
	assert.Equal(t, 6, c.NextID)
	assert.Equal(t, 5, c.MaxID())
}

func TestCollectionRemove(t *testing.T) {
	c := NewCollection()
	now := time.Now()
	c.Append("a", nil, now)
	c.Append("b", nil, now)
	c.Append("c", nil, now)

	removed, ok := c.Remove(2)
	require.True(t, ok)
	assert.Equal(t, "b", removed.Title)
	assert.Equal(t, []int{1, 3}, ids(c))
	assert.Equal(t, 4, c.NextID)

	_, ok = c.Remove(42)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 3}, ids(c))

	c.Remove(1)
	c.Remove(3)
	assert.Empty(t, c.Tasks)
	assert.Equal(t, 1, c.NextID)
}

func TestCollectionFilter(t *testing.T) {
	c := NewCollection()
	now := time.Now()
	c.Append("a", nil, now)
	c.Append("b", strPtr("desc"), now)
	c.Append("c", nil, now)
	c.Find(1).Status = StatusDone
	c.Find(3).Status = StatusDone

	done := StatusDone
	got := slices.Collect(c.Filter(&done))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)

	assert.Len(t, slices.Collect(c.Filter(nil)), 3)

	inProgress := StatusInProgress
	assert.Empty(t, slices.Collect(c.Filter(&inProgress)))
}

func TestFindReturnsPointerIntoCollection(t *testing.T) {
	c := NewCollection()
	c.Append("a", nil, time.Now())

	c.Find(1).Title = "changed"
	assert.Equal(t, "changed", c.Tasks[0].Title)
	assert.Nil(t, c.Find(2))
}

func TestParseFilterRejectsLegacyLiteral(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseFilter(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseFilter("inprogress")
	assert.Error(t, err)
	_, err = ParseFilter("later")
	assert.Error(t, err)
}

func TestTaskUnmarshalNormalizesToUTC(t *testing.T) {
	var task Task
	doc := `{"id": 1, "title": "a", "description": null, "status": "todo",
		"created_at": "2026-01-01T10:00:00+02:00", "updated_at": "2026-01-01T11:30:00-05:00"}`
	require.NoError(t, json.Unmarshal([]byte(doc), &task))

	assert.Equal(t, time.UTC, task.CreatedAt.Location())
	assert.Equal(t, time.UTC, task.UpdatedAt.Location())
	assert.Equal(t, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), task.CreatedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 16, 30, 0, 0, time.UTC), task.UpdatedAt)
	assert.Equal(t, StatusTodo, task.Status)
}

func TestCollectionAppendStopsAtMaxID(t *testing.T) {
	c := &Collection{Tasks: []Task{}, NextID: math.MaxInt - 1}

	got, err := c.Append("last", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt-1, got.ID)
	assert.Equal(t, math.MaxInt, c.NextID)

	_, err = c.Append("one too many", nil, time.Now())
	assert.ErrorIs(t, err, ErrIDsExhausted)
	assert.Len(t, c.Tasks, 1)
	assert.Equal(t, math.MaxInt, c.NextID)
}

func ids(c *Collection) []int {
	out := make([]int, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, t.ID)
	}
	return out
}
