package service

import (
	"context"
	"fmt"

	trackerdomain "tally/internal/modules/tracker/domain"
	apperrors "tally/internal/platform/errors"
)

// reconcileResult maps every requested tag name to its record, created or
// pre-existing. The importer must resolve tags through this map instead of
// re-reading the store: a freshly written tag is not guaranteed visible to an
// immediate read-by-name on every backend.
type reconcileResult struct {
	created []string
	tags    map[string]trackerdomain.Tag
}

// reconcileTags resolves the distinct tag names referenced by an import,
// creating the missing ones on the next free palette colors. Capacity is
// checked against the whole missing set before the first write, so a name
// that cannot fit fails the call with zero tags created.
func (s *TransferService) reconcileTags(ctx context.Context, names []string) (reconcileResult, error) {
	existing, err := s.tags.GetAllTags(ctx)
	if err != nil {
		return reconcileResult{}, fmt.Errorf("load tags: %w", err)
	}

	result := reconcileResult{tags: make(map[string]trackerdomain.Tag, len(names))}
	usedColors := make(map[string]bool, len(existing))
	byName := make(map[string]trackerdomain.Tag, len(existing))
	for _, tag := range existing {
		byName[tag.Name] = tag
		usedColors[tag.Color] = true
	}

	var missing []string
	for _, name := range names {
		if tag, ok := byName[name]; ok {
			// Existing tags pass through untouched; usage bookkeeping
			// belongs to session completion, not reconciliation.
			result.tags[name] = tag
		} else {
			missing = append(missing, name)
		}
	}

	if overflow := len(existing) + len(missing) - trackerdomain.MaxTags; overflow > 0 {
		offender := missing[len(missing)-overflow]
		return reconcileResult{}, fmt.Errorf("%w: no palette color left for %q", apperrors.ErrTagLimitReached, offender)
	}

	now := s.clock.Now().UnixMilli()
	for _, name := range missing {
		color, ok := trackerdomain.NextFreeColor(usedColors)
		if !ok {
			return reconcileResult{}, fmt.Errorf("%w: no palette color left for %q", apperrors.ErrTagLimitReached, name)
		}
		tag := trackerdomain.Tag{Name: name, Color: color, DateCreated: now, DateLastUsed: now}
		if err := s.tags.PutTag(ctx, tag); err != nil {
			return reconcileResult{}, fmt.Errorf("create tag %q: %w", name, err)
		}
		usedColors[color] = true
		result.tags[name] = tag
		result.created = append(result.created, name)
	}
	return result, nil
}
