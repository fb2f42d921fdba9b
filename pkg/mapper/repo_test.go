package mapper

import (
	"reflect"
	"testing"

	"folio-hq/relay/pkg/upstream"
)

func repoNode(fullName string, stars int) upstream.RepositoryNode {
	var node upstream.RepositoryNode
	node.ID = "id-" + fullName
	node.NameWithOwner = fullName
	node.StargazerCount = stars
	node.Owner.Login = "acme"
	return node
}

func TestRepository(t *testing.T) {
	t.Run("missing optionals default to empty values", func(t *testing.T) {
		rec := Repository(repoNode("acme/widget", 3))

		if rec.Homepage != "" || rec.Description != "" || rec.Language != "" {
			t.Errorf("optionals not defaulted: %+v", rec)
		}
		if rec.Topics == nil || len(rec.Topics) != 0 {
			t.Errorf("topics = %v, want empty non-nil set", rec.Topics)
		}
	})

	t.Run("present fields carry through", func(t *testing.T) {
		node := repoNode("acme/widget", 42)
		homepage := "https://widget.dev"
		desc := "a widget"
		node.HomepageURL = &homepage
		node.Description = &desc
		node.PrimaryLanguage = &struct {
			Name string `json:"name"`
		}{Name: "Go"}

		rec := Repository(node)
		if rec.Homepage != homepage || rec.Description != desc || rec.Language != "Go" {
			t.Errorf("fields dropped: %+v", rec)
		}
		if rec.StargazersCount != 42 || rec.Owner != "acme" {
			t.Errorf("fields dropped: %+v", rec)
		}
	})
}

func TestPinnedNames(t *testing.T) {
	nodes := []upstream.RepositoryNode{
		repoNode("Acme/Widget", 0),
		repoNode("acme/gadget", 0),
	}
	got := PinnedNames(nodes)
	want := []string{"acme/widget", "acme/gadget"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PinnedNames() = %v, want lowercased in pinned order %v", got, want)
	}
}

func TestOrderCatalog(t *testing.T) {
	repos := []RepositoryRecord{
		{FullName: "acme/low", StargazersCount: 1},
		{FullName: "acme/second-pin", StargazersCount: 0},
		{FullName: "acme/high", StargazersCount: 90},
		{FullName: "acme/first-pin", StargazersCount: 5},
		{FullName: "acme/mid", StargazersCount: 40},
	}
	pinned := []string{"acme/first-pin", "acme/second-pin"}

	got := OrderCatalog(repos, pinned)

	var names []string
	for _, r := range got {
		names = append(names, r.FullName)
	}
	want := []string{"acme/first-pin", "acme/second-pin", "acme/high", "acme/mid", "acme/low"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want pinned first then stars desc: %v", names, want)
	}

	t.Run("input slice is not mutated", func(t *testing.T) {
		if repos[0].FullName != "acme/low" {
			t.Error("OrderCatalog mutated its input")
		}
	})

	t.Run("pinned match is case-insensitive", func(t *testing.T) {
		mixed := []RepositoryRecord{
			{FullName: "acme/Other", StargazersCount: 99},
			{FullName: "Acme/First-Pin", StargazersCount: 0},
		}
		ordered := OrderCatalog(mixed, []string{"acme/first-pin"})
		if ordered[0].FullName != "Acme/First-Pin" {
			t.Errorf("pinned repo not first: %v", ordered)
		}
	})
}
