package session

import (
	stderrors "errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/tier"
)

func quietOptions() dashboard.Options {
	return dashboard.Options{Logger: log.New(io.Discard)}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(opts Options) (*Store, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(opts)
	s.now = c.now
	return s, c
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(Options{})

	sess, err := s.Create(quietOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session has no id")
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestGetUnknown(t *testing.T) {
	s, _ := newTestStore(Options{})
	_, err := s.Get("missing")
	if !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() = %v, want SESSION_NOT_FOUND", err)
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("error should wrap ErrNotFound")
	}
}

func TestExpiry(t *testing.T) {
	var reasons []EvictReason
	s, c := newTestStore(Options{
		TTL:     time.Minute,
		OnEvict: func(_ string, r EvictReason) { reasons = append(reasons, r) },
	})
	sess, _ := s.Create(quietOptions())

	c.advance(30 * time.Second)
	if _, err := s.Get(sess.ID); err != nil {
		t.Fatalf("Get before TTL: %v", err)
	}

	// Get refreshed the idle timer.
	c.advance(45 * time.Second)
	if _, err := s.Get(sess.ID); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}

	c.advance(2 * time.Minute)
	if _, err := s.Get(sess.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get after TTL = %v", err)
	}
	if len(reasons) != 1 || reasons[0] != EvictExpired {
		t.Errorf("evictions = %v", reasons)
	}
}

func TestCleanup(t *testing.T) {
	s, c := newTestStore(Options{TTL: time.Minute})
	old, _ := s.Create(quietOptions())
	c.advance(50 * time.Second)
	fresh, _ := s.Create(quietOptions())
	c.advance(20 * time.Second)

	if n := s.Cleanup(); n != 1 {
		t.Fatalf("Cleanup() = %d, want 1", n)
	}
	if _, err := s.Get(old.ID); err == nil {
		t.Error("idle session should be gone")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh session: %v", err)
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	var active int
	s, c := newTestStore(Options{
		MaxSessions: 2,
		OnEvict: func(id string, r EvictReason) {
			if r == EvictCapacity {
				evicted = append(evicted, id)
			}
		},
		OnChange: func(n int) { active = n },
	})

	a, _ := s.Create(quietOptions())
	c.advance(time.Second)
	b, _ := s.Create(quietOptions())
	c.advance(time.Second)
	_, _ = s.Get(a.ID)
	c.advance(time.Second)
	_, _ = s.Create(quietOptions())

	if len(evicted) != 1 || evicted[0] != b.ID {
		t.Errorf("evicted = %v, want [%s]", evicted, b.ID)
	}
	if active != 2 || s.Len() != 2 {
		t.Errorf("active = %d, Len() = %d", active, s.Len())
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(Options{})
	sess, _ := s.Create(quietOptions())

	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(sess.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("second Delete = %v", err)
	}
}

func TestDoSerializes(t *testing.T) {
	s := NewStore(Options{})
	sess, _ := s.Create(quietOptions())
	_ = sess.Do(func(d *dashboard.Dashboard) error {
		return d.SetInputs([tier.Count]string{"US", "West", "Zone1"})
	})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sess.Do(func(d *dashboard.Dashboard) error {
				d.Click("US", tier.Countries)
				d.Click("West", tier.Regions)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = sess.Do(func(d *dashboard.Dashboard) error {
		if d.Graph().Len() != 1 {
			t.Errorf("Len() = %d, want 1", d.Graph().Len())
		}
		return nil
	})
}

func TestStartCleanup(t *testing.T) {
	s := NewStore(Options{TTL: time.Nanosecond})
	_, _ = s.Create(quietOptions())

	stop := s.StartCleanup(time.Millisecond)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("background cleanup never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()
}
