package engine

import (
	"github.com/milkdragon/sitesearch/internal/events"
)

// Bind subscribes the engine to UI events on d and returns a function that
// unsubscribes it.
func (e *Engine) Bind(d *events.Dispatcher) func() {
	unsubs := []func(){
		d.Subscribe(events.TypeKey, func(ev events.Event) {
			k := ev.(*events.KeyPressed)
			k.Handled = e.HandleKey(k)
		}),
		d.Subscribe(events.TypeQueryChanged, func(ev events.Event) {
			e.Input(ev.(events.QueryChanged).Value)
		}),
		d.Subscribe(events.TypeToggleClicked, func(events.Event) {
			e.openAsync()
		}),
		d.Subscribe(events.TypeCloseClicked, func(events.Event) {
			e.Close()
		}),
		d.Subscribe(events.TypeOverlayClick, func(events.Event) {
			e.Close()
		}),
		d.Subscribe(events.TypeResultClicked, func(ev events.Event) {
			_ = e.Activate(ev.(events.ResultClicked).Index)
		}),
		d.Subscribe(events.TypeResultHovered, func(ev events.Event) {
			e.Hover(ev.(events.ResultHovered).Index)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
