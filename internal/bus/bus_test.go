package bus

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	got []any
	err error
}

func (r *recorder) Send(v any) error {
	r.got = append(r.got, v)
	return r.err
}

func TestPublishReachesTopicSubscribers(t *testing.T) {
	b := New()

	a := &recorder{}
	c := &recorder{}
	b.Subscribe(ChatTopic("1"), a)
	b.Subscribe(ChatTopic("2"), c)

	b.Publish(ChatTopic("1"), "hello")

	if len(a.got) != 1 || a.got[0] != "hello" {
		t.Fatalf("subscriber on chat:1 expected [hello], got %v", a.got)
	}
	if len(c.got) != 0 {
		t.Fatalf("subscriber on chat:2 should receive nothing, got %v", c.got)
	}
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	b := New()
	// must not panic or create state
	b.Publish(UserTopic("nobody"), "x")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	r := &recorder{}
	b.Subscribe(ChatTopic("1"), r)
	b.Unsubscribe(ChatTopic("1"), r)

	b.Publish(ChatTopic("1"), "late")
	if len(r.got) != 0 {
		t.Fatalf("unsubscribed recorder got %v", r.got)
	}
}

func TestSendErrorDoesNotStopFanout(t *testing.T) {
	b := New()

	bad := &recorder{err: errors.New("closed")}
	good := &recorder{}
	b.Subscribe(ChatTopic("1"), bad)
	b.Subscribe(ChatTopic("1"), good)

	b.Publish(ChatTopic("1"), "msg")

	if len(good.got) != 1 {
		t.Fatalf("healthy subscriber should still receive, got %v", good.got)
	}
}

type blocker struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blocker) Send(v any) error {
	close(s.entered)
	<-s.release
	return nil
}

func TestSlowSubscriberDoesNotBlockSubscribe(t *testing.T) {
	b := New()

	slow := &blocker{entered: make(chan struct{}), release: make(chan struct{})}
	b.Subscribe(ChatTopic("1"), slow)

	go b.Publish(ChatTopic("1"), "msg")
	<-slow.entered

	done := make(chan struct{})
	go func() {
		r := &recorder{}
		b.Subscribe(ChatTopic("2"), r)
		b.Unsubscribe(ChatTopic("2"), r)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscribe blocked behind a stalled publish")
	}
	close(slow.release)
}

func TestTopicNames(t *testing.T) {
	if ChatTopic("42") != "chat:42" {
		t.Fatalf("unexpected chat topic %q", ChatTopic("42"))
	}
	if UserTopic("u1") != "user:u1" {
		t.Fatalf("unexpected user topic %q", UserTopic("u1"))
	}
}
