package reactive

// Listener is anything that wants to hear about a slot changing.
type Listener interface {
	Notify()
}

// Dep is the subscription registry of a single slot.
// Insertion order is notification order.
type Dep struct {
	subs []Listener
}

func (d *Dep) Add(l Listener) {
	d.subs = append(d.subs, l)
}

func (d *Dep) Len() int {
	return len(d.subs)
}

// Notify calls every listener registered before the call started.
// Listeners added while notifying are kept but not called this round.
func (d *Dep) Notify() {
	n := len(d.subs)
	for i := 0; i < n; i++ {
		d.subs[i].Notify()
	}
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func()

func (f ListenerFunc) Notify() { f() }
