package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanOut(t *testing.T) {
	b := New[int]()
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	b.Publish(42)
	for _, s := range []<-chan int{s1, s2} {
		select {
		case v := <-s:
			if v != 42 {
				t.Fatalf("got %d", v)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := New[int]()
	b.Subscribe() // never drained, buffer 8
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeCloses(t *testing.T) {
	b := New[string]()
	s := b.Subscribe()
	b.Unsubscribe(s)
	if _, ok := <-s; ok {
		t.Fatal("channel should be closed")
	}
	b.Publish("ignored")
}

func TestCloseIdempotent(t *testing.T) {
	b := New[int]()
	s := b.Subscribe()
	b.Close()
	b.Close()
	if _, ok := <-s; ok {
		t.Fatal("channel should be closed")
	}
	if got := b.Subscribe(); got == nil {
		t.Fatal("subscribe after close must return a closed channel, not nil")
	}
}
