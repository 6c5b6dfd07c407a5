// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/cmorel/atelier-go/internal/util"
)

// slugFallback is used when a category name slugifies to nothing.
const slugFallback = "categorie"

// UniqueCategorySlug derives a slug from name and probes the existing
// category slugs until it finds a free one. Candidates are base, base-2,
// base-3 and so on. Rows matching excludeID are ignored, so renaming a
// category in place never collides with itself. Pass zero when creating.
func (q *Queries) UniqueCategorySlug(ctx context.Context, name string, excludeID int64) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = slugFallback
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		taken, err := q.CategorySlugExists(ctx, CategorySlugExistsParams{
			Slug:      candidate,
			ExcludeID: excludeID,
		})
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
