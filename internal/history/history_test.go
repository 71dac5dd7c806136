package history

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeClock returns increasing timestamps one second apart.
func fakeClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(capacity int) *MemStore {
	s := NewMemStore(capacity)
	s.now = fakeClock()
	return s
}

func TestCreateAssignsIDAndTime(t *testing.T) {
	s := newTestStore(0)
	rec := s.Create(Record{FileName: "cube.obj", OriginalSize: 42})

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("expected uuid id, got %q: %v", rec.ID, err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, ok := s.Get(rec.ID)
	if !ok {
		t.Fatal("record not found")
	}
	if got.FileName != "cube.obj" || got.OriginalSize != 42 {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected missing id to be absent")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := newTestStore(0)
	for _, name := range []string{"a.obj", "b.obj", "c.obj", "d.obj"} {
		s.Create(Record{FileName: name})
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{2, []string{"d.obj", "c.obj"}},
		{10, []string{"d.obj", "c.obj", "b.obj", "a.obj"}},
		{0, []string{"d.obj", "c.obj", "b.obj", "a.obj"}},
	}

	for _, tt := range tests {
		recs := s.Recent(tt.limit)
		if len(recs) != len(tt.want) {
			t.Fatalf("Recent(%d): expected %d records, got %d", tt.limit, len(tt.want), len(recs))
		}
		for i, name := range tt.want {
			if recs[i].FileName != name {
				t.Errorf("Recent(%d)[%d] = %s, want %s", tt.limit, i, recs[i].FileName, name)
			}
		}
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	s := newTestStore(0)
	for i := 0; i < DefaultLimit+5; i++ {
		s.Create(Record{})
	}
	if got := len(s.Recent(-1)); got != DefaultLimit {
		t.Errorf("expected %d records, got %d", DefaultLimit, got)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := newTestStore(2)
	first := s.Create(Record{FileName: "first.obj"})
	s.Create(Record{FileName: "second.obj"})
	s.Create(Record{FileName: "third.obj"})

	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
	if _, ok := s.Get(first.ID); ok {
		t.Error("expected oldest record to be evicted")
	}
}

func TestSameTickKeepsInsertionOrder(t *testing.T) {
	s := NewMemStore(2)
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return tick }

	var created []Record
	for _, name := range []string{"a.obj", "b.obj", "c.obj", "d.obj"} {
		created = append(created, s.Create(Record{FileName: name}))
	}

	for _, rec := range created[:2] {
		if _, ok := s.Get(rec.ID); ok {
			t.Errorf("expected %s to be evicted", rec.FileName)
		}
	}
	for _, rec := range created[2:] {
		if _, ok := s.Get(rec.ID); !ok {
			t.Errorf("expected %s to be kept", rec.FileName)
		}
	}

	recent := s.Recent(0)
	if len(recent) != 2 || recent[0].FileName != "d.obj" || recent[1].FileName != "c.obj" {
		t.Errorf("unexpected order: %+v", recent)
	}
}

func TestConcurrentCreate(t *testing.T) {
	s := NewMemStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create(Record{FileName: "x.obj"})
			s.Recent(5)
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("expected 50 records, got %d", s.Len())
	}
}
