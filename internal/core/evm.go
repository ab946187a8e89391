package core

import (
	"math"
	"slices"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// EVMSummary holds the earned value indicators of a project at one instant.
type EVMSummary struct {
	PlannedValue         float64 `json:"planned_value" yaml:"planned_value"`
	ActualCost           float64 `json:"actual_cost" yaml:"actual_cost"`
	CompletionPercentage float64 `json:"completion_percentage" yaml:"completion_percentage"`
	EarnedValue          float64 `json:"earned_value" yaml:"earned_value"`
	SPI                  float64 `json:"spi" yaml:"spi"`
	SV                   float64 `json:"sv" yaml:"sv"`
	CPI                  float64 `json:"cpi" yaml:"cpi"`
	CV                   float64 `json:"cv" yaml:"cv"`
}

// Summary computes every indicator. Nothing is cached; each call reads the
// store as it is now.
func (e *WBSEngine) Summary(store *TaskStore) EVMSummary {
	return EVMSummary{
		PlannedValue:         e.PlannedValue(store),
		ActualCost:           e.ActualCost(store),
		CompletionPercentage: e.CompletionPercentage(store),
		EarnedValue:          e.EarnedValue(store),
		SPI:                  e.SPI(store),
		SV:                   e.SV(store),
		CPI:                  e.CPI(store),
		CV:                   e.CV(store),
	}
}

// CompletionPercentage is the fraction of work packages that are done. Only
// leaf tasks count; trunks and the root are summaries. A project without work
// packages is 0 complete.
func (e *WBSEngine) CompletionPercentage(store *TaskStore) float64 {
	total := len(e.Tasks(store))
	if total == 0 {
		return 0
	}
	return float64(len(e.DoneTasks(store))) / float64(total)
}

// EarnedValue is the project's planned value scaled by its completion.
func (e *WBSEngine) EarnedValue(store *TaskStore) float64 {
	return e.PlannedValue(store) * e.CompletionPercentage(store)
}

// SPI is the schedule performance index, EV / PV, or 0 when PV is 0.
func (e *WBSEngine) SPI(store *TaskStore) float64 {
	return ratio(e.EarnedValue(store), e.PlannedValue(store))
}

// SV is the schedule variance, EV - PV.
func (e *WBSEngine) SV(store *TaskStore) float64 {
	return e.EarnedValue(store) - e.PlannedValue(store)
}

// CPI is the cost performance index, EV / AC, or 0 when AC is 0.
func (e *WBSEngine) CPI(store *TaskStore) float64 {
	return ratio(e.EarnedValue(store), e.ActualCost(store))
}

// CV is the cost variance, EV - AC.
func (e *WBSEngine) CV(store *TaskStore) float64 {
	return e.EarnedValue(store) - e.ActualCost(store)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Tasks returns every work package (non-root leaf) in identifier order.
func (e *WBSEngine) Tasks(store *TaskStore) []*Task {
	return e.filterLeaves(store, func(*Task) bool { return true })
}

// TodoTasks returns the work packages that are not done.
func (e *WBSEngine) TodoTasks(store *TaskStore) []*Task {
	return e.filterLeaves(store, func(t *Task) bool { return t.status != models.StatusDone })
}

// InProgressTasks returns the work packages in progress.
func (e *WBSEngine) InProgressTasks(store *TaskStore) []*Task {
	return e.filterLeaves(store, func(t *Task) bool { return t.status == models.StatusInProgress })
}

// DoneTasks returns the work packages that are done.
func (e *WBSEngine) DoneTasks(store *TaskStore) []*Task {
	return e.filterLeaves(store, func(t *Task) bool { return t.status == models.StatusDone })
}

func (e *WBSEngine) filterLeaves(store *TaskStore, keep func(*Task) bool) []*Task {
	var out []*Task
	for id, t := range store.tasks {
		if id.IsRoot() || t.IsTrunk() || !keep(t) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Task) int { return a.id.Compare(b.id) })
	return out
}
