package statusutil

import (
	"fmt"
	"strings"

	"pulse-cli/internal/model"
)

// NormalizeStatus accepts the wire values plus a few friendly aliases
// (todo/doing/done, not-started, "in progress", ...).
func NormalizeStatus(s string) (model.Status, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	switch k {
	case "NOT_STARTED", "TODO", "NEW":
		return model.StatusNotStarted, nil
	case "IN_PROGRESS", "DOING", "ACTIVE":
		return model.StatusInProgress, nil
	case "COMPLETED", "DONE", "COMPLETE":
		return model.StatusCompleted, nil
	case "":
		return "", fmt.Errorf("invalid status: empty")
	default:
		return "", fmt.Errorf("invalid status: %s", strings.TrimSpace(s))
	}
}

// Filter is a status filter: "ALL" or one of the lifecycle statuses.
type Filter string

const FilterAll Filter = "ALL"

// Filters lists the filter chips in display order.
var Filters = []Filter{FilterAll, Filter(model.StatusNotStarted), Filter(model.StatusInProgress), Filter(model.StatusCompleted)}

func NormalizeFilter(s string) (Filter, error) {
	if t := strings.TrimSpace(s); t == "" || strings.EqualFold(t, "all") {
		return FilterAll, nil
	}
	st, err := NormalizeStatus(s)
	if err != nil {
		return "", err
	}
	return Filter(st), nil
}

// Matches reports whether a status passes the filter.
func (f Filter) Matches(s model.Status) bool {
	return f == FilterAll || f == "" || model.Status(f) == s
}

// Next cycles ALL -> NOT_STARTED -> IN_PROGRESS -> COMPLETED -> ALL.
func (f Filter) Next() Filter {
	for i, x := range Filters {
		if x == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

func Label(s model.Status) string {
	switch s {
	case model.StatusNotStarted:
		return "Not Started"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

func FilterLabel(f Filter) string {
	if f == FilterAll || f == "" {
		return "All"
	}
	return Label(model.Status(f))
}

// Index returns the board column index of a status, or -1.
func Index(s model.Status) int {
	for i, x := range model.Statuses {
		if x == s {
			return i
		}
	}
	return -1
}
