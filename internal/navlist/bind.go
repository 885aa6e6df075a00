package navlist

import "github.com/zjrosen/lineage/internal/commandbus"

// Commands delivered to lists.
const (
	CmdSelectNext commandbus.CommandID = "list.selectNext"
	CmdSelectPrev commandbus.CommandID = "list.selectPrev"
	CmdActivate   commandbus.CommandID = "list.activate"
)

// Source connects a list to the data it navigates. IDs and Selected are
// read on every command so the list may change between invocations.
type Source struct {
	IDs        func() []string
	Selected   func() string
	OnSelect   func(id string)
	OnActivate func()
}

// Bind subscribes the list's commands scoped to home and returns a single
// function that removes them all.
func Bind[R comparable](bus *commandbus.Bus, focus commandbus.FocusSource[R], home R, src Source) func() {
	var subs commandbus.Subscriptions
	subs.Add(
		commandbus.SubscribeScoped(bus, focus, home, CmdSelectNext, func() {
			if id, ok := Next(src.IDs(), src.Selected()); ok {
				src.OnSelect(id)
			}
		}),
		commandbus.SubscribeScoped(bus, focus, home, CmdSelectPrev, func() {
			if id, ok := Prev(src.IDs(), src.Selected()); ok {
				src.OnSelect(id)
			}
		}),
		commandbus.SubscribeScoped(bus, focus, home, CmdActivate, func() {
			if src.OnActivate != nil {
				src.OnActivate()
			}
		}),
	)
	return subs.Close
}
