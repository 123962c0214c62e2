package progress

import (
	"github.com/dentalearn/lms/core/course"
)

// State is the position of a content item in its lifecycle:
// Locked -> Unlocked -> InProgress -> Completed. Completed is final.
type State string

const (
	StateLocked     State = "locked"
	StateUnlocked   State = "unlocked"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

type ItemState struct {
	ContentID string             `json:"content_id"`
	ModuleID  string             `json:"module_id"`
	Type      course.ContentType `json:"type"`
	State     State              `json:"state"`
}

// indexOf finds the item in the flattened outline; -1 if absent.
func indexOf(items []course.ContentItem, contentID string, contentType course.ContentType) int {
	for i, item := range items {
		if item.ID == contentID && item.Type == contentType {
			return i
		}
	}
	return -1
}

// isUnlocked applies the linear progression rule on the flattened outline:
// the first item is always unlocked, any other one once its predecessor is completed.
func isUnlocked(cp *CourseProgress, items []course.ContentItem, idx int) bool {
	if idx == 0 {
		return true
	}
	return cp.IsItemCompleted(items[idx-1])
}

func stateOf(cp *CourseProgress, items []course.ContentItem, idx int) State {
	switch item := items[idx]; {
	case cp.IsItemCompleted(item):
		return StateCompleted
	case !isUnlocked(cp, items, idx):
		return StateLocked
	case cp.IsItemStarted(item):
		return StateInProgress
	default:
		return StateUnlocked
	}
}

func statesOf(cp *CourseProgress, outline []course.Module) []ItemState {
	items := flatten(outline)
	states := make([]ItemState, 0, len(items))
	for i, item := range items {
		states = append(states, ItemState{
			ContentID: item.ID,
			ModuleID:  item.ModuleID,
			Type:      item.Type,
			State:     stateOf(cp, items, i),
		})
	}
	return states
}
