package autosave

import (
	"fmt"
	"time"
)

// FormatSaveTime возвращает человекочитаемую давность сохранения
func FormatSaveTime(saved, now time.Time) string {
	diff := int(now.Sub(saved).Seconds())
	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	case diff < 604800:
		return fmt.Sprintf("%dd ago", diff/86400)
	case diff < 2419200:
		return fmt.Sprintf("%dw ago", diff/604800)
	default:
		return saved.Format("2006-01-02")
	}
}

// StatusDisplay строка статуса для UI
type StatusDisplay struct {
	Text  string
	Icon  string
	Class string
}

// DisplayFor возвращает отображение статуса сохранения для строки состояния
func DisplayFor(status Status, hasChanges bool, lastSaved, now time.Time, online bool) StatusDisplay {
	if !online {
		return StatusDisplay{
			Text:  "Offline - Changes will save when reconnected",
			Icon:  "offline",
			Class: "offline",
		}
	}

	switch status {
	case StatusSaved:
		if hasChanges {
			return StatusDisplay{Text: "Changes detected", Icon: "pending", Class: "pending"}
		}
		return StatusDisplay{
			Text:  fmt.Sprintf("Saved %s", FormatSaveTime(lastSaved, now)),
			Icon:  "saved",
			Class: "saved",
		}
	case StatusSaving:
		return StatusDisplay{Text: "Saving...", Icon: "saving", Class: "saving"}
	case StatusRetrying:
		return StatusDisplay{Text: "Retrying save...", Icon: "saving", Class: "retrying"}
	case StatusUnsaved:
		return StatusDisplay{Text: "Unsaved changes", Icon: "unsaved", Class: "unsaved"}
	case StatusError:
		return StatusDisplay{Text: "Save failed", Icon: "error", Class: "error"}
	case StatusOffline:
		return StatusDisplay{Text: "Offline", Icon: "offline", Class: "offline"}
	case StatusConflict:
		return StatusDisplay{Text: "Version conflict", Icon: "error", Class: "error"}
	default:
		return StatusDisplay{Text: "Unknown status", Icon: "error", Class: "error"}
	}
}
