package importer

import (
	"context"
	"strings"

	"github.com/dell121212/laberaer/internal/core"
	"github.com/dell121212/laberaer/pkg/domain"
)

// DefaultAuthor is recorded when an imported row names no author and no
// actor is signed in.
const DefaultAuthor = "导入用户"

// Chain runs fns in order and stops at the first error.
func Chain[T any](fns ...PrepareFunc[T]) PrepareFunc[T] {
	return func(ctx context.Context, draft *T) error {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(ctx, draft); err != nil {
				return err
			}
		}
		return nil
	}
}

// ResolveStrainRefs rewrites suitable strain tokens that are not known ids to
// the id of the strain with that name or scientific name. Unknown tokens are
// left for the store to reject.
func ResolveStrainRefs(strains func() []domain.Strain) PrepareFunc[domain.Medium] {
	return func(_ context.Context, m *domain.Medium) error {
		all := strains()
		ids := make(map[string]bool, len(all))
		for _, s := range all {
			ids[s.ID] = true
		}
		for i, token := range m.SuitableStrainIDs {
			if ids[token] {
				continue
			}
			for _, s := range all {
				if strings.EqualFold(s.Name, token) || strings.EqualFold(s.ScientificName, token) {
					m.SuitableStrainIDs[i] = s.ID
					break
				}
			}
		}
		return nil
	}
}

// StampStrainAuthor fills an empty addedBy with the importing actor.
func StampStrainAuthor(actors core.ActorProvider) PrepareFunc[domain.Strain] {
	return func(ctx context.Context, s *domain.Strain) error {
		if s.AddedBy == "" {
			s.AddedBy = author(ctx, actors)
		}
		return nil
	}
}

// StampRecommender fills an empty recommendedBy with the importing actor.
func StampRecommender(actors core.ActorProvider) PrepareFunc[domain.Medium] {
	return func(ctx context.Context, m *domain.Medium) error {
		if m.RecommendedBy == "" {
			m.RecommendedBy = author(ctx, actors)
		}
		return nil
	}
}

func author(ctx context.Context, actors core.ActorProvider) string {
	if actors != nil {
		if actor, ok := actors.CurrentActor(ctx); ok && actor.DisplayName != "" {
			return actor.DisplayName
		}
	}
	return DefaultAuthor
}
