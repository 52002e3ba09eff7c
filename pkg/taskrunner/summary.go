package taskrunner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tyemirov/spx/internal/playbook"
)

// RenderSummaryLine returns the summary line printed after playbook runs.
func RenderSummaryLine(data playbook.SummaryData) string {
	if data.TotalTasks == 0 {
		return ""
	}

	parts := []string{fmt.Sprintf("Summary: total.tasks=%d", data.TotalTasks)}

	if len(data.EventCounts) > 0 {
		keys := make([]string, 0, len(data.EventCounts))
		for key := range data.EventCounts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", key, data.EventCounts[key]))
		}
	}

	warnCount := data.LevelCounts[playbook.EventLevelWarn]
	errorCount := data.LevelCounts[playbook.EventLevelError]

	parts = append(parts, fmt.Sprintf("%s=%d", playbook.EventLevelWarn, warnCount))
	parts = append(parts, fmt.Sprintf("%s=%d", playbook.EventLevelError, errorCount))

	durationHuman := strings.TrimSpace(data.DurationHuman)
	if durationHuman == "" {
		durationHuman = "0s"
	}

	parts = append(parts, fmt.Sprintf("duration_human=%s", durationHuman))
	parts = append(parts, fmt.Sprintf("duration_ms=%d", data.DurationMilliseconds))

	return strings.Join(parts, " ")
}
