// Package views derives the list, board and stats projections of a project collection.
//
// Every function here is pure: the result depends only on the arguments, so projections are
// recomputed from the controller snapshot after each change instead of being kept in sync.
package views

import (
	"math"
	"strings"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
)

// NormalizeSearch trims and lower-cases a search query.
func NormalizeSearch(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Matches reports whether p passes the status filter and the search query.
func Matches(p model.Project, filter statusutil.Filter, search string) bool {
	if !filter.Matches(p.Status) {
		return false
	}
	q := NormalizeSearch(search)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	return strings.Contains(strings.ToLower(p.DescriptionText()), q)
}

// Filter returns the projects matching filter and search, in their original order.
func Filter(list []model.Project, filter statusutil.Filter, search string) []model.Project {
	out := make([]model.Project, 0, len(list))
	for _, p := range list {
		if Matches(p, filter, search) {
			out = append(out, p)
		}
	}
	return out
}

// Groups holds one bucket per lifecycle status.
type Groups struct {
	NotStarted []model.Project `json:"NOT_STARTED"`
	InProgress []model.Project `json:"IN_PROGRESS"`
	Completed  []model.Project `json:"COMPLETED"`
}

// Bucket returns the bucket for s (nil for an unknown status).
func (g Groups) Bucket(s model.Status) []model.Project {
	switch s {
	case model.StatusNotStarted:
		return g.NotStarted
	case model.StatusInProgress:
		return g.InProgress
	case model.StatusCompleted:
		return g.Completed
	default:
		return nil
	}
}

func (g Groups) Len() int {
	return len(g.NotStarted) + len(g.InProgress) + len(g.Completed)
}

// GroupByStatus partitions filtered into the three status buckets, keeping relative order.
func GroupByStatus(filtered []model.Project) Groups {
	g := Groups{
		NotStarted: []model.Project{},
		InProgress: []model.Project{},
		Completed:  []model.Project{},
	}
	for _, p := range filtered {
		switch p.Status {
		case model.StatusNotStarted:
			g.NotStarted = append(g.NotStarted, p)
		case model.StatusInProgress:
			g.InProgress = append(g.InProgress, p)
		case model.StatusCompleted:
			g.Completed = append(g.Completed, p)
		}
	}
	return g
}

type Stats struct {
	Total      int `json:"total"`
	NotStarted int `json:"notStarted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`

	NotStartedRate int `json:"notStartedRate"`
	ActiveRate     int `json:"activeRate"`
	CompletionRate int `json:"completionRate"`
}

// Count returns the count for s.
func (s Stats) Count(st model.Status) int {
	switch st {
	case model.StatusNotStarted:
		return s.NotStarted
	case model.StatusInProgress:
		return s.InProgress
	case model.StatusCompleted:
		return s.Completed
	default:
		return 0
	}
}

// Rate returns the rounded percentage for s.
func (s Stats) Rate(st model.Status) int {
	switch st {
	case model.StatusNotStarted:
		return s.NotStartedRate
	case model.StatusInProgress:
		return s.ActiveRate
	case model.StatusCompleted:
		return s.CompletionRate
	default:
		return 0
	}
}

// ComputeStats counts projects per status. Percentages are 0 for an empty list.
func ComputeStats(list []model.Project) Stats {
	var s Stats
	s.Total = len(list)
	for _, p := range list {
		switch p.Status {
		case model.StatusNotStarted:
			s.NotStarted++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
	}
	s.NotStartedRate = percent(s.NotStarted, s.Total)
	s.ActiveRate = percent(s.InProgress, s.Total)
	s.CompletionRate = percent(s.Completed, s.Total)
	return s
}

func percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	// Half away from zero, like Math.round for non-negative values.
	return int(math.Floor(float64(count)*100/float64(total) + 0.5))
}

// Summary describes how much of the collection the current filter shows.
type Summary struct {
	Total       int  `json:"total"`
	Filtered    int  `json:"filtered"`
	IsFiltering bool `json:"isFiltering"`
}

func Summarize(list []model.Project, filter statusutil.Filter, search string) Summary {
	n := 0
	for _, p := range list {
		if Matches(p, filter, search) {
			n++
		}
	}
	return Summary{
		Total:       len(list),
		Filtered:    n,
		IsFiltering: (filter != statusutil.FilterAll && filter != "") || NormalizeSearch(search) != "",
	}
}
