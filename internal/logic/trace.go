package logic

// TraceStep records the banners still in play at one stage of selection.
type TraceStep struct {
	Stage         string            `json:"stage"`
	BannerIndexes []int             `json:"banner_indexes"`
	Details       map[string]string `json:"details,omitempty"`
}

// SelectionTrace captures the ordered list of steps performed by the banner
// selector. A nil trace is valid and records nothing.
type SelectionTrace struct {
	Steps []TraceStep `json:"steps"`
}

// AddStep appends a trace entry for the given stage.
func (t *SelectionTrace) AddStep(stage string, indexes []int) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{
		Stage:         stage,
		BannerIndexes: append([]int(nil), indexes...),
	})
}

// AddStepWithDetails appends a trace entry with extra per-stage details, such
// as the pattern that matched or the bundle that excluded a banner.
func (t *SelectionTrace) AddStepWithDetails(stage string, indexes []int, details map[string]string) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{
		Stage:         stage,
		BannerIndexes: append([]int(nil), indexes...),
		Details:       details,
	})
}
