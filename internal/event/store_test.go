package event

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"security-core/engine/internal/event/domain"
)

func camera(till string, bagged int) *domain.CameraEvent {
	return &domain.CameraEvent{
		TillID:               till,
		CameraID:             "C1",
		EstimatedItemsBagged: bagged,
		Confidence:           0.7,
		ObservedAt:           time.Now().UTC(),
	}
}

func pos(till string, scanned int) *domain.PosEvent {
	return &domain.PosEvent{
		TillID:       till,
		ItemsScanned: scanned,
		ObservedAt:   time.Now().UTC(),
	}
}

func TestStore_Latest_EmptyTill(t *testing.T) {
	s := NewStore(1)
	cam, p := s.Latest("T1")
	if cam != nil || p != nil {
		t.Errorf("Latest on empty till = (%v, %v), want (nil, nil)", cam, p)
	}
}

func TestStore_Latest_MostRecentWins(t *testing.T) {
	s := NewStore(1)
	s.PutCamera(camera("T1", 2))
	s.PutCamera(camera("T1", 7))
	s.PutPos(pos("T1", 3))

	cam, p := s.Latest("T1")
	if cam == nil || p == nil {
		t.Fatal("Latest should return both sides")
	}
	if cam.EstimatedItemsBagged != 7 {
		t.Errorf("latest camera bagged = %d, want 7", cam.EstimatedItemsBagged)
	}
	if p.ItemsScanned != 3 {
		t.Errorf("latest pos scanned = %d, want 3", p.ItemsScanned)
	}
}

func TestStore_BoundedHistory(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 10; i++ {
		s.PutCamera(camera("T1", i))
		s.PutPos(pos("T1", i))
	}
	cameras, posN := s.Len("T1")
	if cameras != 3 {
		t.Errorf("retained cameras = %d, want 3", cameras)
	}
	if posN != 3 {
		t.Errorf("retained pos = %d, want 3", posN)
	}
	cam, _ := s.Latest("T1")
	if cam.EstimatedItemsBagged != 9 {
		t.Errorf("latest camera bagged = %d, want 9", cam.EstimatedItemsBagged)
	}
}

func TestStore_DepthFloor(t *testing.T) {
	s := NewStore(0)
	if s.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", s.Depth())
	}
}

func TestStore_TillsAreIsolated(t *testing.T) {
	s := NewStore(1)
	s.PutCamera(camera("T1", 5))
	s.PutCamera(camera("T2", 9))

	cam, _ := s.Latest("T1")
	if cam.EstimatedItemsBagged != 5 {
		t.Errorf("T1 camera bagged = %d, want 5", cam.EstimatedItemsBagged)
	}
	cam, _ = s.Latest("T2")
	if cam.EstimatedItemsBagged != 9 {
		t.Errorf("T2 camera bagged = %d, want 9", cam.EstimatedItemsBagged)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(2)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		till := fmt.Sprintf("T%d", i%4)
		go func(till string, n int) {
			defer wg.Done()
			s.PutCamera(camera(till, n))
			s.PutPos(pos(till, n))
		}(till, i)
		go func(till string) {
			defer wg.Done()
			s.Latest(till)
		}(till)
	}
	wg.Wait()
	// Races surface under -race.
}
