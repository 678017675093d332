package sse

// Generation identifies which protocol generation governs a pending
// tool call's approval.
type Generation int

const (
	// GenerationLegacy resolves via the tool-call id and tool name.
	GenerationLegacy Generation = iota
	// GenerationTicket resolves via an approval ticket id minted by the
	// newer backend.
	GenerationTicket
)

func (g Generation) String() string {
	if g == GenerationTicket {
		return "ticket"
	}
	return "legacy"
}

// PendingCall is a tool call awaiting an external approve/deny decision.
type PendingCall struct {
	ToolCallEvent
}

// Generation reports which protocol generation governs this call. A
// non-empty approval ticket id selects the ticket generation; everything
// else is legacy, where the tool-call id itself is the decision handle.
func (c PendingCall) Generation() Generation {
	if c.Approval != nil && c.Approval.ID != "" {
		return GenerationTicket
	}
	return GenerationLegacy
}

// callRecord is the latest observed state for one tool-call id.
type callRecord struct {
	last     ToolCallEvent
	terminal bool
}

// Tracker classifies tool-call lifecycle state across one stream's event
// sequence. It trusts arrival order as phase order and never reorders.
// The Tracker only classifies; it never sends approvals or denials.
//
// A Tracker is owned by a single stream consumption and is not safe for
// concurrent use.
type Tracker struct {
	calls map[string]*callRecord
	order []string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{calls: make(map[string]*callRecord)}
}

// Observe feeds one normalized event through the Tracker. Non-tool
// events are ignored.
//
// Once a call reaches a terminal phase (output-available or a tool
// output error), later records for the same id are dropped. Out-of-order
// re-delivery of an earlier phase would otherwise make a completed call
// look pending again.
func (t *Tracker) Observe(evt Event) {
	switch e := evt.(type) {
	case ToolCallEvent:
		rec := t.record(e.ToolCallID)
		if rec.terminal {
			return
		}
		rec.last = e
		if e.Phase == PhaseOutputAvailable {
			rec.terminal = true
		}
	case ToolOutputErrorEvent:
		rec := t.record(e.ToolCallID)
		rec.terminal = true
	}
}

func (t *Tracker) record(id string) *callRecord {
	rec, ok := t.calls[id]
	if !ok {
		rec = &callRecord{}
		t.calls[id] = rec
		t.order = append(t.order, id)
	}
	return rec
}

// Pending returns the calls whose latest recorded phase is
// input-available, in first-seen order. These are exactly the calls
// awaiting an external approve/deny decision.
func (t *Tracker) Pending() []PendingCall {
	var pending []PendingCall
	for _, id := range t.order {
		rec := t.calls[id]
		if !rec.terminal && rec.last.Phase == PhaseInputAvailable {
			pending = append(pending, PendingCall{rec.last})
		}
	}
	return pending
}

// Get returns the latest observed event for a tool-call id.
func (t *Tracker) Get(id string) (ToolCallEvent, bool) {
	rec, ok := t.calls[id]
	if !ok {
		return ToolCallEvent{}, false
	}
	return rec.last, true
}

// Len returns the number of distinct tool-call ids observed.
func (t *Tracker) Len() int {
	return len(t.calls)
}

// Reset clears all recorded state so the Tracker can serve a new stream.
func (t *Tracker) Reset() {
	t.calls = make(map[string]*callRecord)
	t.order = nil
}
