package journey

// PlannedSlot is a slot definition with every default resolved, ready to be
// persisted.
type PlannedSlot struct {
	Key              string
	Title            string
	Description      string
	Signals          []string
	Framework        string
	EstimatedMinutes int
	DisplayOrder     int
}

// PlanSlots resolves defaults for every slot in template order.
// Rules:
// - framework falls back to SPARC
// - estimated minutes fall back to 45
// - display order falls back to position + 1
func PlanSlots(tmpl *Template) []PlannedSlot {
	slots := tmpl.Journey.StorySlots
	planned := make([]PlannedSlot, len(slots))

	for i, s := range slots {
		p := PlannedSlot{
			Key:              s.Key,
			Title:            s.Title,
			Description:      s.Description,
			Signals:          s.Signals,
			Framework:        s.Framework,
			EstimatedMinutes: s.EstimatedMinutes,
			DisplayOrder:     s.DisplayOrder,
		}
		if p.Signals == nil {
			p.Signals = []string{}
		}
		if p.Framework == "" {
			p.Framework = DefaultFramework
		}
		if p.EstimatedMinutes == 0 {
			p.EstimatedMinutes = DefaultEstimatedMinutes
		}
		if p.DisplayOrder == 0 {
			p.DisplayOrder = i + 1
		}
		planned[i] = p
	}

	return planned
}

// DeclaredSignals returns the union of signals referenced by the template's
// slots, in first-seen order.
func DeclaredSignals(tmpl *Template) []string {
	var lists [][]string
	for _, s := range tmpl.Journey.StorySlots {
		lists = append(lists, s.Signals)
	}
	return UnionSignals(lists...)
}

// UnionSignals merges signal lists preserving first-seen order.
func UnionSignals(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, id := range list {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
