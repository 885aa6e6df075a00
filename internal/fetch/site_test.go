package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// scheduled captures delayed messages so tests fire them explicitly.
type scheduled struct {
	msgs []tea.Msg
}

func (s *scheduled) schedule(_ time.Duration, msg tea.Msg) tea.Cmd {
	s.msgs = append(s.msgs, msg)
	return func() tea.Msg { return msg }
}

type recorder struct {
	calls []string
}

func (r *recorder) target(key string) Target[string] {
	return Target[string]{
		Key: key,
		Fetch: func(context.Context) (string, error) {
			r.calls = append(r.calls, key)
			return "value:" + key, nil
		},
	}
}

func failing(key string, err error) Target[string] {
	return Target[string]{
		Key:   key,
		Fetch: func(context.Context) (string, error) { return "", err },
	}
}

func newTestSite(policy Policy) (*Site[string], *scheduled) {
	sch := &scheduled{}
	site := NewSite[string](context.Background(), "test",
		WithPolicy(policy),
		WithScheduler(sch.schedule),
	)
	return site, sch
}

// drive runs cmd and feeds the resulting message back until nothing is left.
func drive(site *Site[string], cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		next, handled := site.Update(msg)
		if !handled {
			return
		}
		cmd = next
	}
}

func TestSite_FirstRequestIsImmediate(t *testing.T) {
	site, sch := newTestSite(ClearOnError)
	rec := &recorder{}

	cmd := site.Request(rec.target("c1"))
	require.NotNil(t, cmd)
	require.True(t, site.Loading())
	require.True(t, site.ShowLoading())

	drive(site, cmd)

	require.Empty(t, sch.msgs, "first request must not be debounced")
	require.Equal(t, []string{"c1"}, rec.calls)
	v, ok := site.Value()
	require.True(t, ok)
	require.Equal(t, "value:c1", v)
	require.Equal(t, "c1", site.ValueKey())
	require.False(t, site.Loading())
	require.NoError(t, site.Err())
}

func TestSite_SameKeyIsNotDebounced(t *testing.T) {
	site, sch := newTestSite(ClearOnError)
	rec := &recorder{}

	drive(site, site.Request(rec.target("c1")))
	drive(site, site.Request(rec.target("c1")))

	require.Empty(t, sch.msgs)
	require.Equal(t, []string{"c1", "c1"}, rec.calls)
}

func TestSite_BurstFetchesOnlyFirstAndLast(t *testing.T) {
	site, sch := newTestSite(ClearOnError)
	rec := &recorder{}

	cmd1 := site.Request(rec.target("T1"))
	cmd2 := site.Request(rec.target("T2"))
	cmd3 := site.Request(rec.target("T3"))

	require.Len(t, sch.msgs, 2, "T2 and T3 are both rapid changes")

	// T1 resolves after T2/T3 were requested; its result is stale.
	drive(site, cmd1)
	drive(site, cmd2)
	drive(site, cmd3)

	require.Equal(t, []string{"T1", "T3"}, rec.calls)
	v, ok := site.Value()
	require.True(t, ok)
	require.Equal(t, "value:T3", v)
	require.False(t, site.Loading())
}

func TestSite_OutOfOrderCompletion(t *testing.T) {
	site, _ := newTestSite(KeepOnError)
	site.debounce = 0

	slow := Target[string]{Key: "a", Fetch: func(context.Context) (string, error) { return "A", nil }}
	fast := Target[string]{Key: "b", Fetch: func(context.Context) (string, error) { return "B", nil }}

	slowCmd := site.Request(slow)
	fastCmd := site.Request(fast)

	// Newer request completes first.
	_, handled := site.Update(fastCmd())
	require.True(t, handled)
	_, handled = site.Update(slowCmd())
	require.True(t, handled)

	v, _ := site.Value()
	require.Equal(t, "B", v)
}

func TestSite_EmptyKeyClearsAndInvalidates(t *testing.T) {
	site, _ := newTestSite(KeepOnError)
	rec := &recorder{}

	drive(site, site.Request(rec.target("c1")))
	inflight := site.Request(rec.target("c1"))

	require.Nil(t, site.Request(Target[string]{}))
	require.False(t, site.HasValue())
	require.False(t, site.Loading())
	require.Empty(t, site.Key())

	drive(site, inflight)
	require.False(t, site.HasValue(), "result for the abandoned target must not appear")

	// After clearing, the next request is treated as the first one again.
	rec.calls = nil
	cmd := site.Request(rec.target("c2"))
	drive(site, cmd)
	require.Equal(t, []string{"c2"}, rec.calls)
}

func TestSite_KeepsPreviousValueWhileLoading(t *testing.T) {
	site, _ := newTestSite(KeepOnError)
	rec := &recorder{}

	drive(site, site.Request(rec.target("f1")))
	site.Request(rec.target("f2"))

	require.True(t, site.Loading())
	require.False(t, site.ShowLoading(), "previous value stays on screen")
	v, _ := site.Value()
	require.Equal(t, "value:f1", v)
}

func TestSite_FailurePolicies(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		policy    Policy
		wantValue bool
	}{
		{"clear drops previous value", ClearOnError, false},
		{"keep retains previous value", KeepOnError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, _ := newTestSite(tt.policy)
			site.debounce = 0
			rec := &recorder{}

			drive(site, site.Request(rec.target("ok")))
			drive(site, site.Request(failing("bad", boom)))

			require.ErrorIs(t, site.Err(), boom)
			require.Equal(t, tt.wantValue, site.HasValue())
			require.False(t, site.Loading())

			drive(site, site.Request(rec.target("ok")))
			require.NoError(t, site.Err(), "success clears the error")
		})
	}
}

func TestSite_NewKeyClearsErrorWhileDebouncing(t *testing.T) {
	boom := errors.New("boom")
	site, sch := newTestSite(KeepOnError)
	rec := &recorder{}

	drive(site, site.Request(failing("bad", boom)))
	require.ErrorIs(t, site.Err(), boom)

	// Same target again: the error stays until the retry settles.
	retry := site.Request(failing("bad", boom))
	require.ErrorIs(t, site.Err(), boom)
	drive(site, retry)

	cmd := site.Request(rec.target("next"))
	require.NotNil(t, cmd)
	require.Len(t, sch.msgs, 1, "new key is debounced")
	require.NoError(t, site.Err(), "no error shown for the pending target")
	require.True(t, site.Loading())

	drive(site, cmd)
	require.NoError(t, site.Err())
	require.Equal(t, []string{"next"}, rec.calls)
	v, _ := site.Value()
	require.Equal(t, "value:next", v)
}

func TestSite_StaleFailureIsDiscarded(t *testing.T) {
	site, _ := newTestSite(ClearOnError)
	site.debounce = 0
	rec := &recorder{}

	failCmd := site.Request(failing("bad", errors.New("gone")))
	okCmd := site.Request(rec.target("good"))

	drive(site, okCmd)
	drive(site, failCmd)

	require.NoError(t, site.Err())
	v, ok := site.Value()
	require.True(t, ok)
	require.Equal(t, "value:good", v)
}

func TestSite_CancelDropsInflight(t *testing.T) {
	site, _ := newTestSite(ClearOnError)
	rec := &recorder{}

	drive(site, site.Request(rec.target("a")))
	cmd := site.Request(rec.target("a"))
	site.Cancel()
	drive(site, cmd)

	require.False(t, site.Loading())
	v, _ := site.Value()
	require.Equal(t, "value:a", v)
}

func TestSite_IgnoresOtherSites(t *testing.T) {
	site, _ := newTestSite(ClearOnError)

	_, handled := site.Update(ResultMsg[string]{Site: "other", Token: 1})
	require.False(t, handled)
	_, handled = site.Update(debounceMsg{site: "other", token: 1})
	require.False(t, handled)
	_, handled = site.Update(ResultMsg[int]{Site: "test", Token: 1})
	require.False(t, handled, "result of another value type is not ours")
	_, handled = site.Update(tea.KeyMsg{})
	require.False(t, handled)
}

func TestSite_DefaultSchedulerUsesDebounceWindow(t *testing.T) {
	site := NewSite[string](context.Background(), "ticks", WithDebounce(time.Millisecond))
	rec := &recorder{}

	drive(site, site.Request(rec.target("a")))
	cmd := site.Request(rec.target("b"))
	require.NotNil(t, cmd)

	msg := cmd()
	dm, ok := msg.(debounceMsg)
	require.True(t, ok)
	require.Equal(t, "ticks", dm.site)

	next, handled := site.Update(dm)
	require.True(t, handled)
	drive(site, next)
	require.Equal(t, []string{"a", "b"}, rec.calls)
}

// Whatever order requests resolve in, the visible value converges on the
// last requested key.
func TestSite_ConvergesOnLatestRequest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		site, _ := newTestSite(KeepOnError)
		rec := &recorder{}

		n := rapid.IntRange(1, 8).Draw(t, "requests")
		cmds := make([]tea.Cmd, 0, n)
		var last string
		for i := 0; i < n; i++ {
			last = fmt.Sprintf("k%d", rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("key%d", i)))
			cmds = append(cmds, site.Request(rec.target(last)))
		}

		order := rapid.Permutation(cmds).Draw(t, "order")
		for _, cmd := range order {
			drive(site, cmd)
		}

		v, ok := site.Value()
		if !ok {
			t.Fatalf("no value after all requests resolved")
		}
		if v != "value:"+last {
			t.Fatalf("got %q, want value for %q", v, last)
		}
		if site.Loading() {
			t.Fatalf("still loading")
		}
	})
}
