package tracking

// PlanningOrderTracker hands out planning orders to sessions in the
// order they are first recorded.  Orders start at 1, only ever grow and
// are never reused, including after a session is forgotten.
type PlanningOrderTracker struct {
	SessionOrderMap map[string]int `json:"session_order_map"`
	NextOrder       int            `json:"next_order"`
}

func newPlanningOrderTracker() PlanningOrderTracker {
	return PlanningOrderTracker{SessionOrderMap: map[string]int{}, NextOrder: 1}
}

// Order returns the order assigned to sessionID, if any.
func (p *PlanningOrderTracker) Order(sessionID string) (int, bool) {
	o, ok := p.SessionOrderMap[sessionID]
	return o, ok
}

// Assign returns the order of sessionID, assigning the next one when
// the session has none yet.  replan is true when the order existed.
func (p *PlanningOrderTracker) Assign(sessionID string) (order int, replan bool) {
	if o, ok := p.SessionOrderMap[sessionID]; ok {
		return o, true
	}
	p.normalize()
	order = p.NextOrder
	p.SessionOrderMap[sessionID] = order
	p.NextOrder++
	return order, false
}

// Forget drops the mapping for sessionID.  NextOrder is left alone.
func (p *PlanningOrderTracker) Forget(sessionID string) {
	delete(p.SessionOrderMap, sessionID)
}

// normalize repairs a tracker loaded from storage so NextOrder is never
// at or below an order already handed out.
func (p *PlanningOrderTracker) normalize() {
	if p.SessionOrderMap == nil {
		p.SessionOrderMap = map[string]int{}
	}
	if p.NextOrder < 1 {
		p.NextOrder = 1
	}
	for _, o := range p.SessionOrderMap {
		if o >= p.NextOrder {
			p.NextOrder = o + 1
		}
	}
}
