package engine

// ContainsEvent reports whether events includes one of the given type.
func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// RoundResultFor exposes the recorded outcome of a round for read-only
// callers such as tests and the snapshot layer.
func (s Session) RoundResultFor(round int) (RoundResult, bool) {
	for _, r := range s.Rounds {
		if r.Round == round {
			return r, true
		}
	}
	return RoundResult{}, false
}
