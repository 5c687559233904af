package cli

import (
	"encoding/json"
	"strconv"

	"pulse-cli/internal/format"
	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
	"pulse-cli/internal/views"
)

// Table adapters for --format table. They marshal to JSON exactly like the wrapped value.

type projectTable []model.Project

var _ format.Tabular = projectTable(nil)

func (t projectTable) TableHeaders() []string {
	return []string{"ID", "NAME", "STATUS", "DESCRIPTION"}
}

func (t projectTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{p.ID.String(), p.Name, statusutil.Label(p.Status), truncate(p.DescriptionText(), 48)})
	}
	return rows
}

type groupTable views.Groups

func (g groupTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(views.Groups(g))
}

func (g groupTable) TableHeaders() []string {
	return []string{"STATUS", "ID", "NAME"}
}

func (g groupTable) TableRows() [][]string {
	var rows [][]string
	for _, st := range model.Statuses {
		for _, p := range views.Groups(g).Bucket(st) {
			rows = append(rows, []string{statusutil.Label(st), p.ID.String(), p.Name})
		}
	}
	return rows
}

type statsTable views.Stats

func (s statsTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(views.Stats(s))
}

func (s statsTable) TableHeaders() []string {
	return []string{"STATUS", "COUNT", "RATE"}
}

func (s statsTable) TableRows() [][]string {
	st := views.Stats(s)
	rows := make([][]string, 0, len(model.Statuses)+1)
	for _, status := range model.Statuses {
		rows = append(rows, []string{statusutil.Label(status), strconv.Itoa(st.Count(status)), strconv.Itoa(st.Rate(status)) + "%"})
	}
	return append(rows, []string{"Total", strconv.Itoa(st.Total), ""})
}

func truncate(s string, n int) string {
	r := []rune(firstLine(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
