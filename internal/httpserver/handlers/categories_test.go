package handlers

import (
	"testing"

	"github.com/allmytab/startpage/internal/domain"
)

func TestProfessionGroupsUnfilteredViewer(t *testing.T) {
	cats := []*domain.Category{
		{ID: "c1", DisplayName: "General", Owner: domain.OwnerAdmin, Professions: []string{"all"}},
		{ID: "c2", DisplayName: "BPO Tools", Owner: domain.OwnerAdmin, Professions: []string{"bpo"}},
		{ID: "c3", DisplayName: "Mine", Owner: domain.OwnerUser},
	}
	v := domain.Viewer{ID: "v1", Profession: domain.ProfessionAll, Country: domain.CountryGlobal}

	groups := professionGroups(v, cats)
	if groups == nil {
		t.Fatal("professionGroups() = nil for an unfiltered viewer, want profession headings")
	}
	if got := categoryIDs(groups[domain.ProfessionAll]); len(got) != 2 || got[0] != "c1" || got[1] != "c3" {
		t.Errorf("groups[all] = %v, want [c1 c3]", got)
	}
	if got := categoryIDs(groups["bpo"]); len(got) != 1 || got[0] != "c2" {
		t.Errorf("groups[bpo] = %v, want [c2]", got)
	}
}

func TestProfessionGroupsFilteredViewerStaysFlat(t *testing.T) {
	cats := []*domain.Category{
		{ID: "c2", DisplayName: "BPO Tools", Owner: domain.OwnerAdmin, Professions: []string{"bpo"}},
	}
	v := domain.Viewer{ID: "v1", Profession: "bpo", Country: "ph"}

	if groups := professionGroups(v, cats); groups != nil {
		t.Errorf("professionGroups() = %v for a filtered viewer, want nil", groups)
	}
}
