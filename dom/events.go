package dom

import "github.com/delaneyj/minivue/surface"

// Dispatch delivers ev to target: capturing listeners from the outermost
// ancestor inward, then the target's own listeners (capturing first),
// then non-capturing listeners from the parent outward.
func (d *Document) Dispatch(target surface.Node, ev *surface.Event) {
	Dispatch(target, ev)
}

// Dispatch is Document.Dispatch for nodes that are not attached to a
// document.
func Dispatch(target surface.Node, ev *surface.Event) {
	t, ok := target.(*Node)
	if !ok || t == nil {
		return
	}
	ev.Target = t

	var path []*Node
	for p := t.parent; p != nil; p = p.parent {
		path = append(path, p)
	}

	ev.Capturing = true
	for i := len(path) - 1; i >= 0; i-- {
		if fire(path[i], ev, true) {
			return
		}
	}
	if fire(t, ev, true) {
		return
	}
	ev.Capturing = false
	if fire(t, ev, false) {
		return
	}
	for _, p := range path {
		if fire(p, ev, false) {
			return
		}
	}
}

// fire runs the listeners of n for one phase and reports whether
// propagation was stopped.
func fire(n *Node, ev *surface.Event, capture bool) bool {
	var matched []surface.Handler
	for _, l := range n.listeners {
		if l.event == ev.Type && l.capture == capture {
			matched = append(matched, l.handler)
		}
	}
	ev.CurrentTarget = n
	for _, h := range matched {
		h(ev)
	}
	return ev.Stopped()
}

// Input sets the live value of n and dispatches an input signal.
func Input(n surface.Node, value string) {
	n.SetValue(value)
	Dispatch(n, surface.NewEvent("input"))
}

// Change sets the live value of n and dispatches a change signal.
func Change(n surface.Node, value string) {
	n.SetValue(value)
	Dispatch(n, surface.NewEvent("change"))
}

func Click(n surface.Node) {
	Dispatch(n, surface.NewEvent("click"))
}
