package settings

import "strings"

// MatchTaskProfile selects the task profile that applies to a task context.
// Profiles are scanned in configured order; the first whose task-name list
// and task-type list both accept the context wins. An empty list accepts any
// value. Task names compare case-insensitively, task types exactly.
//
// Returns nil when no profile matches.
func MatchTaskProfile(profiles []*TaskProfile, taskName, taskType string) *TaskProfile {
	for _, profile := range profiles {
		if !matchesAnyFold(profile.Tasks, taskName) {
			continue
		}
		if !matchesAnyExact(profile.TaskTypes, taskType) {
			continue
		}
		return profile
	}
	return nil
}

func matchesAnyFold(values []string, value string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}

func matchesAnyExact(values []string, value string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
