package core

import (
	"slices"
	"strings"

	"github.com/dell121212/laberaer/pkg/domain"
)

// Search returns the items with at least one field containing query,
// ignoring case. An empty query returns every item.
func Search[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	var out []T
	for _, item := range items {
		if slices.ContainsFunc(fields(item), func(f string) bool {
			return strings.Contains(strings.ToLower(f), query)
		}) {
			out = append(out, item)
		}
	}
	return out
}

// SearchStrains matches name or description and, when kind is set, the exact
// strain type.
func SearchStrains(strains []domain.Strain, query, kind string) []domain.Strain {
	if kind != "" {
		strains = slices.DeleteFunc(slices.Clone(strains), func(s domain.Strain) bool { return s.Kind != kind })
	}
	return Search(strains, query, func(s domain.Strain) []string { return []string{s.Name, s.Description} })
}

// SearchMembers matches name or group.
func SearchMembers(members []domain.Member, query string) []domain.Member {
	return Search(members, query, func(m domain.Member) []string { return []string{m.Name, m.Group} })
}

// SearchMedia matches name, recommender or the name of a suitable strain.
func SearchMedia(media []domain.Medium, strains []domain.Strain, query string) []domain.Medium {
	names := make(map[string]string, len(strains))
	for _, s := range strains {
		names[s.ID] = s.Name
	}
	return Search(media, query, func(m domain.Medium) []string {
		fields := []string{m.Name, m.RecommendedBy}
		for _, id := range m.SuitableStrainIDs {
			fields = append(fields, names[id])
		}
		return fields
	})
}

// SearchTheses matches title, author, grade or class.
func SearchTheses(theses []domain.Thesis, query string) []domain.Thesis {
	return Search(theses, query, func(t domain.Thesis) []string { return []string{t.Title, t.Author, t.Grade, t.Class} })
}

// StrainKinds returns the distinct strain types in first-seen order.
func StrainKinds(strains []domain.Strain) []string {
	var kinds []string
	for _, s := range strains {
		if s.Kind != "" && !slices.Contains(kinds, s.Kind) {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}
