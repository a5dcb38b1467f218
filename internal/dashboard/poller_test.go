package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPollerAppliesFreshSnapshot(t *testing.T) {
	source := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		snapshot := Zero(time.Now())
		snapshot.Total = 7
		return snapshot, nil
	})
	poller := NewPoller(source, time.Hour, nil)

	poller.Refresh(context.Background())
	snapshot, err := poller.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snapshot.Total != 7 {
		t.Errorf("total = %d", snapshot.Total)
	}
}

func TestPollerDiscardsStaleResponse(t *testing.T) {
	// Two refreshes race: the first one issued resolves last. Its
	// response must be dropped in favor of the later request's.
	var mu sync.Mutex
	totals := []int{1, 2}
	release := make(chan struct{})

	source := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		mu.Lock()
		total := totals[0]
		totals = totals[1:]
		mu.Unlock()

		if total == 1 {
			<-release // first request is slow
		}
		snapshot := Zero(time.Now())
		snapshot.Total = total
		return snapshot, nil
	})
	poller := NewPoller(source, time.Hour, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Refresh(context.Background())
	}()
	// Make sure the slow request grabbed seq 1 before issuing seq 2.
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		poller.Refresh(context.Background())
	}()

	// Wait for the fast (second) request to land, then release the slow one.
	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot, _ := poller.Latest()
		if snapshot.Total == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(release)
	wg.Wait()

	snapshot, err := poller.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snapshot.Total != 2 {
		t.Errorf("stale response overwrote the fresh one: total = %d", snapshot.Total)
	}
}

func TestPollerDropsResponseSupersededInFlight(t *testing.T) {
	// Both refreshes are held. When the first one resolves, a newer
	// request is already in flight, so its response must not be applied
	// even though nothing newer has landed yet.
	var mu sync.Mutex
	totals := []int{1, 2}
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})

	source := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		mu.Lock()
		total := totals[0]
		totals = totals[1:]
		mu.Unlock()

		if total == 1 {
			<-releaseFirst
		} else {
			<-releaseSecond
		}
		snapshot := Zero(time.Now())
		snapshot.Total = total
		return snapshot, nil
	})
	poller := NewPoller(source, time.Hour, nil)

	firstDone := make(chan struct{})
	secondDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		poller.Refresh(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer close(secondDone)
		poller.Refresh(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)

	// First request resolves while the second is still pending.
	close(releaseFirst)
	<-firstDone

	if snapshot, _ := poller.Latest(); snapshot.Total != 0 {
		t.Errorf("superseded response applied: total = %d", snapshot.Total)
	}

	close(releaseSecond)
	<-secondDone
	if snapshot, _ := poller.Latest(); snapshot.Total != 2 {
		t.Errorf("latest response not applied: total = %d", snapshot.Total)
	}
}

func TestPollerErrorYieldsZeroSnapshot(t *testing.T) {
	source := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		return Snapshot{}, context.DeadlineExceeded
	})
	poller := NewPoller(source, time.Hour, nil)
	poller.Refresh(context.Background())

	snapshot, err := poller.Latest()
	if err == nil {
		t.Error("expected refresh error surfaced")
	}
	if snapshot.Total != 0 || len(snapshot.StatusCounts) == 0 {
		t.Errorf("error snapshot = %+v", snapshot)
	}
}

func TestPollerStartAndStop(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	source := SourceFunc(func(ctx context.Context) (Snapshot, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return Zero(time.Now()), nil
	})

	poller := NewPoller(source, 10*time.Millisecond, nil)
	handle := poller.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	handle.Stop()

	// Stop waits for in-flight fetches, so the count is stable now.
	mu.Lock()
	n := calls
	mu.Unlock()
	if n < 3 {
		t.Fatalf("only %d fetches before deadline", n)
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	after := calls
	mu.Unlock()
	if after != n {
		t.Errorf("fetches continued after Stop: %d -> %d", n, after)
	}
}
