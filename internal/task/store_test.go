package task

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/tasker/internal/errors"
)

func collect(s *Store) []Task {
	return slices.Collect(s.List())
}

func TestStore_WorkedExample(t *testing.T) {
	s := NewStore()

	id1, err := s.Add("buy milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	id2, err := s.Add("pay bills")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", id1, id2)
	}

	if _, err := s.Toggle(1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	got := collect(s)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 1 || got[0].Title != "buy milk" || !got[0].Done {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].ID != 2 || got[1].Title != "pay bills" || got[1].Done {
		t.Errorf("got[1] = %+v", got[1])
	}

	if _, err := s.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got = collect(s)
	if len(got) != 1 || got[0].ID != 1 || !got[0].Done {
		t.Errorf("after delete = %+v", got)
	}
}

func TestStore_AddPreservesOrderAndUniqueIDs(t *testing.T) {
	s := NewStore()
	const n = 25

	for i := range n {
		if _, err := s.Add(fmt.Sprintf("task %d", i)); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}

	got := collect(s)
	if len(got) != n {
		t.Fatalf("len = %d, want %d", len(got), n)
	}

	seen := make(map[int64]bool)
	for i, task := range got {
		if want := fmt.Sprintf("task %d", i); task.Title != want {
			t.Errorf("got[%d].Title = %q, want %q", i, task.Title, want)
		}
		if seen[task.ID] {
			t.Errorf("duplicate id %d", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestStore_AddRejectsEmptyTitle(t *testing.T) {
	s := NewStore()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(title)
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Add(%q) err = %v, want ErrInvalidInput", title, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_AddTrimsTitle(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	id, _ := s.Add("  water plants  ")
	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "water plants" {
		t.Errorf("Title = %q", got.Title)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
}

func TestStore_ToggleTwiceRestoresFlag(t *testing.T) {
	s := NewStore()
	id, _ := s.Add("read book")

	first, err := s.Toggle(id)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !first.Done {
		t.Error("first toggle should mark done")
	}

	second, err := s.Toggle(id)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if second.Done {
		t.Error("second toggle should restore pending")
	}
}

func TestStore_DeleteThenNotFound(t *testing.T) {
	s := NewStore()
	id, _ := s.Add("one")
	_, _ = s.Add("two")

	removed, err := s.Delete(id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.Title != "one" {
		t.Errorf("removed = %+v", removed)
	}

	for task := range s.List() {
		if task.ID == id {
			t.Errorf("deleted task %d still listed", id)
		}
	}

	if _, err := s.Toggle(id); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Toggle after delete err = %v, want ErrTaskNotFound", err)
	}
	if _, err := s.Delete(id); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Delete after delete err = %v, want ErrTaskNotFound", err)
	}
	if _, err := s.Get(id); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("Get after delete err = %v, want ErrTaskNotFound", err)
	}
}

func TestStore_IDsNotReused(t *testing.T) {
	s := NewStore()
	_, _ = s.Add("a")
	id2, _ := s.Add("b")

	if _, err := s.Delete(id2); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	id3, _ := s.Add("c")
	if id3 == id2 {
		t.Errorf("id %d reused after delete", id3)
	}
	if id3 != 3 {
		t.Errorf("id3 = %d, want 3", id3)
	}
}

func TestStore_Replace(t *testing.T) {
	s := NewStore()
	_, _ = s.Add("discarded")

	s.Replace([]Task{
		{ID: 4, Title: "four"},
		{ID: 9, Title: "nine", Done: true},
	})

	got := collect(s)
	if len(got) != 2 || got[0].ID != 4 || got[1].ID != 9 {
		t.Fatalf("after Replace = %+v", got)
	}

	id, _ := s.Add("ten")
	if id != 10 {
		t.Errorf("next id = %d, want 10", id)
	}
}

func TestStore_ReplaceNeverMovesCounterBackwards(t *testing.T) {
	s := NewStore()
	for range 5 {
		_, _ = s.Add("x")
	}

	s.Replace(nil)
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}

	id, _ := s.Add("y")
	if id != 6 {
		t.Errorf("id = %d, want 6", id)
	}
}

func TestStore_IDCeiling(t *testing.T) {
	t.Run("last id is handed out once", func(t *testing.T) {
		s := NewStoreFrom([]Task{{ID: MaxID - 1, Title: "almost"}})

		id, err := s.Add("last")
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if id != MaxID {
			t.Errorf("id = %d, want %d", id, MaxID)
		}

		if _, err := s.Add("overflow"); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Add past MaxID err = %v, want ErrInvalidInput", err)
		}
		if s.Len() != 2 {
			t.Errorf("Len = %d, want 2", s.Len())
		}
	})

	t.Run("replace with max int64 does not wrap", func(t *testing.T) {
		s := NewStore()
		s.Replace([]Task{{ID: math.MaxInt64, Title: "huge"}})

		id, err := s.Add("next")
		if err == nil {
			t.Fatalf("Add returned id %d, want error", id)
		}
		for task := range s.List() {
			if task.ID <= 0 {
				t.Errorf("non-positive id %d in store", task.ID)
			}
		}
	})
}

func TestStore_ListIsSnapshot(t *testing.T) {
	s := NewStore()
	_, _ = s.Add("a")
	_, _ = s.Add("b")

	view := s.List()
	_, _ = s.Add("c")

	count := 0
	for task := range view {
		count++
		// Mutating while ranging must not deadlock.
		_, _ = s.Toggle(task.ID)
	}
	if count != 2 {
		t.Errorf("view yielded %d tasks, want 2", count)
	}
}

func TestStore_Status(t *testing.T) {
	s := NewStore()
	id, _ := s.Add("a")
	_, _ = s.Add("b")
	_, _ = s.Add("c")
	_, _ = s.Toggle(id)

	st := s.Status()
	if st.Total != 3 || st.Done != 1 || st.Pending != 2 {
		t.Errorf("Status = %+v", st)
	}
}

func TestStore_Filter(t *testing.T) {
	s := NewStore()
	_, _ = s.Add("Buy milk")
	_, _ = s.Add("buy bread")
	_, _ = s.Add("pay bills")

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"substring", "buy", []string{"Buy milk", "buy bread"}},
		{"glob prefix", "pay*", []string{"pay bills"}},
		{"glob char class", "buy [bm]*", []string{"Buy milk", "buy bread"}},
		{"no match", "walk", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Filter(tt.pattern)
			if err != nil {
				t.Fatalf("Filter: %v", err)
			}
			var titles []string
			for _, task := range got {
				titles = append(titles, task.Title)
			}
			if !slices.Equal(titles, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.pattern, titles, tt.want)
			}
		})
	}
}

func TestStore_FilterInvalid(t *testing.T) {
	s := NewStore()

	if _, err := s.Filter("  "); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("empty pattern err = %v", err)
	}
	if _, err := s.Filter("[unclosed"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("bad pattern err = %v", err)
	}
}

func TestStore_WithLockPropagatesError(t *testing.T) {
	s := NewStore()
	_, _ = s.Add("a")

	want := errors.New("save failed")
	var seen int
	err := s.WithLock(func(tasks []Task) error {
		seen = len(tasks)
		return want
	})
	if err != want {
		t.Errorf("WithLock err = %v, want %v", err, want)
	}
	if seen != 1 {
		t.Errorf("callback saw %d tasks, want 1", seen)
	}

	// Lock must be released after an error.
	if _, err := s.Add("b"); err != nil {
		t.Fatalf("Add after WithLock: %v", err)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				id, err := s.Add(fmt.Sprintf("w%d-%d", w, i))
				if err != nil {
					t.Errorf("Add: %v", err)
					return
				}
				_, _ = s.Toggle(id)
				if i%3 == 0 {
					_, _ = s.Delete(id)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 100 {
			_ = s.WithLock(func(tasks []Task) error {
				seen := make(map[int64]bool, len(tasks))
				for _, task := range tasks {
					if seen[task.ID] {
						t.Errorf("duplicate id %d in snapshot", task.ID)
					}
					seen[task.ID] = true
				}
				return nil
			})
		}
	}()

	wg.Wait()

	// 8 workers * 50 adds, every third one deleted (i = 0, 3, ..., 48 -> 17).
	if want := 8 * (50 - 17); s.Len() != want {
		t.Errorf("Len = %d, want %d", s.Len(), want)
	}
}
