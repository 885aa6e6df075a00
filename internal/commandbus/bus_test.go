package commandbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	cmdNext CommandID = "test.next"
	cmdPrev CommandID = "test.prev"
)

func TestBus_EmitRunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := New()
	var calls []string

	defer bus.Subscribe(cmdNext, func() { calls = append(calls, "first") })()
	defer bus.Subscribe(cmdNext, func() { calls = append(calls, "second") })()
	defer bus.Subscribe(cmdPrev, func() { calls = append(calls, "other") })()

	bus.Emit(cmdNext)
	require.Equal(t, []string{"first", "second"}, calls)
}

func TestBus_EmitWithoutSubscribersIsNoop(t *testing.T) {
	bus := New()
	require.NotPanics(t, func() { bus.Emit("nobody.listens") })
}

func TestBus_UnsubscribeRemovesExactlyThatHandler(t *testing.T) {
	bus := New()
	count := 0
	handler := func() { count++ }

	// Same function value subscribed twice yields two independent subscriptions.
	unsubA := bus.Subscribe(cmdNext, handler)
	unsubB := bus.Subscribe(cmdNext, handler)
	require.Equal(t, 2, bus.HandlerCount(cmdNext))

	unsubA()
	unsubA()
	require.Equal(t, 1, bus.HandlerCount(cmdNext))

	bus.Emit(cmdNext)
	require.Equal(t, 1, count)

	unsubB()
	require.Equal(t, 0, bus.HandlerCount(cmdNext))
}

func TestBus_HandlerMayUnsubscribeDuringEmit(t *testing.T) {
	bus := New()
	var calls []string

	var unsubSelf func()
	unsubSelf = bus.Subscribe(cmdNext, func() {
		calls = append(calls, "self")
		unsubSelf()
	})
	defer bus.Subscribe(cmdNext, func() { calls = append(calls, "after") })()

	bus.Emit(cmdNext)
	bus.Emit(cmdNext)
	require.Equal(t, []string{"self", "after", "after"}, calls)
}

func TestDefault_IsSingleton(t *testing.T) {
	require.Same(t, Default(), Default())

	hit := false
	unsub := Default().Subscribe(cmdNext, func() { hit = true })
	t.Cleanup(unsub)

	Default().Emit(cmdNext)
	require.True(t, hit)
}

type focusStub struct{ region string }

func (f *focusStub) FocusedRegion() string { return f.region }

func TestSubscribeScoped_ChecksFocusAtEmitTime(t *testing.T) {
	bus := New()
	focus := &focusStub{region: "sidebar"}
	var commits, global int

	defer SubscribeScoped(bus, focus, "commits", cmdNext, func() { commits++ })()
	defer SubscribeGlobal(bus, cmdNext, func() { global++ })()

	bus.Emit(cmdNext)
	require.Equal(t, 0, commits, "scoped handler must not run while another region is focused")
	require.Equal(t, 1, global)

	focus.region = "commits"
	bus.Emit(cmdNext)
	require.Equal(t, 1, commits, "focus is read per emission, not cached at subscribe time")
	require.Equal(t, 2, global)

	focus.region = ""
	bus.Emit(cmdNext)
	require.Equal(t, 1, commits)
}

func TestSubscriptions_CloseUnsubscribesAll(t *testing.T) {
	bus := New()
	var subs Subscriptions
	subs.Add(
		bus.Subscribe(cmdNext, func() {}),
		bus.Subscribe(cmdPrev, func() {}),
	)

	subs.Close()
	require.Equal(t, 0, bus.HandlerCount(cmdNext))
	require.Equal(t, 0, bus.HandlerCount(cmdPrev))
	require.Empty(t, subs)
}
