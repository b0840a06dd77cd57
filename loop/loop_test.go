package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestOrder(t *testing.T) {
	l := New()
	ran := make(chan error, 1)
	go func() {
		ran <- l.Start(context.Background())
	}()
	got := []int{}
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() {
			got = append(got, i)
		})
	}
	if err := l.Do(context.Background(), func() {
		got = append(got, 10)
	}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}); diff != "" {
		t.Errorf("run order: %v", diff)
	}
	l.Close()
	if err := <-ran; err != nil {
		t.Errorf("got %v, want nil", err)
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v, want %v", err, ErrClosed)
	}
}

func TestContextStops(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan error, 1)
	go func() {
		ran <- l.Start(ctx)
	}()
	cancel()
	select {
	case err := <-ran:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want %v", err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestDoTimeout(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want %v", err, context.DeadlineExceeded)
	}
}
