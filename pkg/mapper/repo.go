// Package mapper transforms upstream payloads into the relay's stable
// output schema. Every function here is pure: no I/O, no clocks.
//
// Optional fields (homepage, description, language, topics) default to
// empty values when absent. Fields whose absence signals a real problem
// (a null user node) are reported as warnings or errors by the callers,
// never silently zeroed.
package mapper

import (
	"sort"
	"strings"

	"folio-hq/relay/pkg/upstream"
)

// RepositoryRecord is one repository in the catalog output. Field names
// follow the REST-style schema the front-end was built against.
type RepositoryRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Homepage        string   `json:"homepage"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	Owner           string   `json:"owner"`
	Topics          []string `json:"topics"`
}

// Repository maps a GraphQL repository node to a RepositoryRecord,
// substituting empty values for missing optional fields.
func Repository(node upstream.RepositoryNode) RepositoryRecord {
	rec := RepositoryRecord{
		ID:              node.ID,
		Name:            node.Name,
		FullName:        node.NameWithOwner,
		HTMLURL:         node.URL,
		StargazersCount: node.StargazerCount,
		Owner:           node.Owner.Login,
		Topics:          []string{},
	}
	if node.HomepageURL != nil {
		rec.Homepage = *node.HomepageURL
	}
	if node.Description != nil {
		rec.Description = *node.Description
	}
	if node.PrimaryLanguage != nil {
		rec.Language = node.PrimaryLanguage.Name
	}
	for _, tn := range node.RepositoryTopics.Nodes {
		if tn.Topic.Name != "" {
			rec.Topics = append(rec.Topics, tn.Topic.Name)
		}
	}
	return rec
}

// PinnedNames maps pinned repository nodes to their lowercased full names,
// preserving the pinned order.
func PinnedNames(nodes []upstream.RepositoryNode) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.NameWithOwner == "" {
			continue
		}
		names = append(names, strings.ToLower(n.NameWithOwner))
	}
	return names
}

// OrderCatalog sorts repos for presentation: repositories in the pinned
// list first, in the pinned list's original order, then the rest by
// descending star count. The sort is stable so equal-star repositories
// keep their upstream (newest-updated-first) order.
func OrderCatalog(repos []RepositoryRecord, pinned []string) []RepositoryRecord {
	pinnedIndex := make(map[string]int, len(pinned))
	for i, name := range pinned {
		pinnedIndex[name] = i
	}

	ordered := make([]RepositoryRecord, len(repos))
	copy(ordered, repos)

	sort.SliceStable(ordered, func(a, b int) bool {
		ai, aPinned := pinnedIndex[strings.ToLower(ordered[a].FullName)]
		bi, bPinned := pinnedIndex[strings.ToLower(ordered[b].FullName)]
		switch {
		case aPinned && bPinned:
			return ai < bi
		case aPinned:
			return true
		case bPinned:
			return false
		default:
			return ordered[a].StargazersCount > ordered[b].StargazersCount
		}
	})
	return ordered
}
