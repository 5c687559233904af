package views

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"pulse-cli/internal/model"
	"pulse-cli/internal/statusutil"
)

func proj(id, name string, st model.Status) model.Project {
	return model.Project{ID: model.ID(id), Name: name, Status: st, OwnerID: "1"}
}

func projDesc(id, name, desc string, st model.Status) model.Project {
	p := proj(id, name, st)
	p.Description = model.StrPtr(desc)
	return p
}

func ids(ps []model.Project) string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(p.ID))
	}
	return b.String()
}

func TestFilter_StatusOnly(t *testing.T) {
	list := []model.Project{
		proj("1", "Site Redesign", model.StatusNotStarted),
		proj("2", "API Migration", model.StatusInProgress),
	}
	got := Filter(list, statusutil.Filter(model.StatusInProgress), "")
	if ids(got) != "2" {
		t.Fatalf("expected [2]; got [%s]", ids(got))
	}
}

func TestFilter_SearchNameOrDescription(t *testing.T) {
	list := []model.Project{
		proj("1", "Site Redesign", model.StatusNotStarted),
		projDesc("2", "Backend", "migrate the API to v2", model.StatusInProgress),
		proj("3", "Docs", model.StatusCompleted),
		projDesc("4", "api gateway", "", model.StatusCompleted),
	}
	cases := []struct {
		filter statusutil.Filter
		search string
		want   string
	}{
		{statusutil.FilterAll, "", "1,2,3,4"},
		{statusutil.FilterAll, "  API ", "2,4"},
		{statusutil.FilterAll, "redesign", "1"},
		{statusutil.Filter(model.StatusCompleted), "api", "4"},
		{statusutil.Filter(model.StatusNotStarted), "api", ""},
		{statusutil.FilterAll, "zzz", ""},
	}
	for _, tc := range cases {
		got := Filter(list, tc.filter, tc.search)
		if ids(got) != tc.want {
			t.Fatalf("Filter(%q, %q): expected [%s]; got [%s]", tc.filter, tc.search, tc.want, ids(got))
		}
	}
}

func TestFilter_PredicateProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	words := []string{"alpha", "Beta", "GAMMA", "delta", "api", ""}
	for round := 0; round < 200; round++ {
		n := r.Intn(12)
		list := make([]model.Project, 0, n)
		for i := 0; i < n; i++ {
			p := proj(strconv.Itoa(i), words[r.Intn(len(words)-1)]+" "+words[r.Intn(len(words))], model.Statuses[r.Intn(3)])
			if r.Intn(2) == 0 {
				p.Description = model.StrPtr(words[r.Intn(len(words))])
			}
			list = append(list, p)
		}
		filter := statusutil.Filters[r.Intn(len(statusutil.Filters))]
		search := words[r.Intn(len(words))]

		got := Filter(list, filter, search)
		q := strings.ToLower(search)
		var want []model.Project
		for _, p := range list {
			okStatus := filter == statusutil.FilterAll || model.Status(filter) == p.Status
			okSearch := q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.DescriptionText()), q)
			if okStatus && okSearch {
				want = append(want, p)
			}
		}
		if ids(got) != ids(want) {
			t.Fatalf("round %d: filter=%q search=%q expected [%s]; got [%s]", round, filter, search, ids(want), ids(got))
		}
	}
}

func TestGroupByStatus_PartitionsInOrder(t *testing.T) {
	list := []model.Project{
		proj("1", "a", model.StatusCompleted),
		proj("2", "b", model.StatusNotStarted),
		proj("3", "c", model.StatusCompleted),
		proj("4", "d", model.StatusInProgress),
		proj("5", "e", model.StatusNotStarted),
	}
	g := GroupByStatus(list)
	if ids(g.NotStarted) != "2,5" || ids(g.InProgress) != "4" || ids(g.Completed) != "1,3" {
		t.Fatalf("unexpected buckets: ns=[%s] ip=[%s] c=[%s]", ids(g.NotStarted), ids(g.InProgress), ids(g.Completed))
	}
	if g.Len() != len(list) {
		t.Fatalf("expected bucket sizes to sum to %d; got %d", len(list), g.Len())
	}
	seen := map[model.ID]int{}
	for _, st := range model.Statuses {
		for _, p := range g.Bucket(st) {
			seen[p.ID]++
		}
	}
	for _, p := range list {
		if seen[p.ID] != 1 {
			t.Fatalf("expected %s in exactly one bucket; got %d", p.ID, seen[p.ID])
		}
	}
}

func TestGroupByStatus_EmptyHasThreeBuckets(t *testing.T) {
	g := GroupByStatus(nil)
	if g.NotStarted == nil || g.InProgress == nil || g.Completed == nil {
		t.Fatalf("expected non-nil empty buckets")
	}
	if g.Len() != 0 {
		t.Fatalf("expected empty groups")
	}
}

func TestComputeStats_ZeroSafe(t *testing.T) {
	s := ComputeStats(nil)
	if s.Total != 0 || s.NotStartedRate != 0 || s.ActiveRate != 0 || s.CompletionRate != 0 {
		t.Fatalf("expected all-zero stats; got %+v", s)
	}
}

func TestComputeStats_Rounding(t *testing.T) {
	list := []model.Project{
		proj("1", "a", model.StatusCompleted),
		proj("2", "b", model.StatusNotStarted),
		proj("3", "c", model.StatusInProgress),
	}
	s := ComputeStats(list)
	if s.Total != 3 || s.Completed != 1 || s.NotStarted != 1 || s.InProgress != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.CompletionRate != 33 || s.ActiveRate != 33 || s.NotStartedRate != 33 {
		t.Fatalf("expected 33%% each; got %+v", s)
	}

	list = append(list, proj("4", "d", model.StatusCompleted), proj("5", "e", model.StatusCompleted), proj("6", "f", model.StatusCompleted),
		proj("7", "g", model.StatusCompleted), proj("8", "h", model.StatusCompleted))
	s = ComputeStats(list)
	// 6/8 = 75, 1/8 = 12.5 -> 13
	if s.CompletionRate != 75 || s.ActiveRate != 13 {
		t.Fatalf("unexpected rates: %+v", s)
	}
	if s.Rate(model.StatusCompleted) != 75 || s.Count(model.StatusCompleted) != 6 {
		t.Fatalf("unexpected accessor values: %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	list := []model.Project{
		proj("1", "Site Redesign", model.StatusNotStarted),
		proj("2", "API Migration", model.StatusInProgress),
	}
	s := Summarize(list, statusutil.FilterAll, "  ")
	if s.IsFiltering || s.Filtered != 2 || s.Total != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	s = Summarize(list, statusutil.FilterAll, "site")
	if !s.IsFiltering || s.Filtered != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
