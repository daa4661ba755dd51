// Package tui renders a live actor roster and heartbeat table, the Go
// counterpart of odin_actor::tui (ActorsTab + the PingStatus rolling
// average model in tui/actors_tab.rs), built on termui instead of ratatui.
package tui

import (
	"fmt"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/odin-fire/odin-go/internal/actor"
)

type rowState struct {
	typeName     string
	status       actor.PingStatus
	unresponsive bool
}

// Dashboard is an actor.EventObserver that accumulates roster and heartbeat
// state and renders it as a termui table plus a scrolling event log.
type Dashboard struct {
	mu    sync.Mutex
	rows  map[actor.ActorId]*rowState
	order []actor.ActorId
	lines []string

	table *widgets.Table
	log   *widgets.List
}

// NewDashboard builds an unstarted dashboard. Call Observer to obtain the
// EventObserver to register with an ActorSystem, then Run to draw it.
func NewDashboard() *Dashboard {
	table := widgets.NewTable()
	table.Title = "Actors"
	table.RowSeparator = false
	table.FillRow = true

	log := widgets.NewList()
	log.Title = "Events"

	return &Dashboard{
		rows:  make(map[actor.ActorId]*rowState),
		table: table,
		log:   log,
	}
}

// Observer returns the EventObserver bound to this dashboard's state.
func (d *Dashboard) Observer() actor.EventObserver {
	return d.handle
}

func (d *Dashboard) handle(ev actor.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch e := ev.(type) {
	case actor.AddActor:
		if _, exists := d.rows[e.ID]; !exists {
			d.order = append(d.order, e.ID)
		}
		d.rows[e.ID] = &rowState{typeName: e.TypeName}
		d.appendLine(fmt.Sprintf("+ %s (%s)", e.ID, e.TypeName))
	case actor.RemoveActor:
		delete(d.rows, e.ID)
		d.removeFromOrder(e.ID)
		d.appendLine(fmt.Sprintf("- %s", e.ID))
	case actor.ActorHeartbeat:
		if r, ok := d.rows[e.ID]; ok {
			r.status = e.Status
			r.unresponsive = false
		}
	case actor.UnresponsiveActor:
		if r, ok := d.rows[e.ID]; ok {
			r.unresponsive = true
		}
		d.appendLine(fmt.Sprintf("! %s unresponsive at cycle %d", e.ID, e.Cycle))
	case actor.HeartBeatCycleStarted:
		// no persistent row state changes; cadence marker only
	case actor.HeartBeatsStarted:
		d.appendLine(fmt.Sprintf("heartbeat armed, interval=%s", e.Interval))
	case actor.ActorsStarted:
		d.appendLine("all actors started")
	case actor.ActorsTerminated:
		d.appendLine("all actors terminated")
	case actor.NoStartActor:
		d.appendLine(fmt.Sprintf("! %s failed to start: %v", e.ID, e.Cause))
	case actor.NoTerminateActor:
		d.appendLine(fmt.Sprintf("! %s failed to terminate in time", e.ID))
	}
	d.render()
}

func (d *Dashboard) removeFromOrder(id actor.ActorId) {
	for i, x := range d.order {
		if x == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

func (d *Dashboard) appendLine(line string) {
	d.lines = append(d.lines, line)
	const maxLines = 200
	if len(d.lines) > maxLines {
		d.lines = d.lines[len(d.lines)-maxLines:]
	}
}

func (d *Dashboard) render() {
	rows := [][]string{{"ID", "TYPE", "LAST", "MIN", "MAX", "AVG", "STATUS"}}
	for _, id := range d.order {
		r := d.rows[id]
		status := "ok"
		switch {
		case r.unresponsive:
			status = "UNRESPONSIVE"
		case r.status.Outlier:
			status = "slow"
		}
		rows = append(rows, []string{
			string(id),
			r.typeName,
			fmtNanos(r.status.LastNanos),
			fmtNanos(r.status.MinNanos),
			fmtNanos(r.status.MaxNanos),
			fmtNanos(r.status.AvgNanos),
			status,
		})
	}
	d.table.Rows = rows
	d.log.Rows = append([]string(nil), d.lines...)
}

func fmtNanos(ns uint64) string {
	return fmt.Sprintf("%.2fms", float64(ns)/1e6)
}

// Run initializes the terminal, lays out the table and log widgets, and
// blocks redrawing on a tick until 'q'/Ctrl-C is pressed or done closes.
func (d *Dashboard) Run(done <-chan struct{}) error {
	if err := ui.Init(); err != nil {
		return actor.OpFailed("tui init", err)
	}
	defer ui.Close()

	w, h := ui.TerminalDimensions()
	d.table.SetRect(0, 0, w, h/2)
	d.log.SetRect(0, h/2, w, h)

	d.mu.Lock()
	d.render()
	d.mu.Unlock()
	ui.Render(d.table, d.log)

	events := ui.PollEvents()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.table.SetRect(0, 0, payload.Width, payload.Height/2)
				d.log.SetRect(0, payload.Height/2, payload.Width, payload.Height)
				ui.Render(d.table, d.log)
			}
		case <-ticker.C:
			d.mu.Lock()
			ui.Render(d.table, d.log)
			d.mu.Unlock()
		case <-done:
			return nil
		}
	}
}
