package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/store/drivers/sqlite/gen"
)

type flagsRepo struct {
	q *gen.Queries
}

func (r *flagsRepo) GetFlagByID(ctx context.Context, id string) (domain.Flag, error) {
	row, err := r.q.GetFlagByID(ctx, id)
	if err != nil {
		return domain.Flag{}, mapNotFound(err)
	}
	return mapFlag(row), nil
}

func (r *flagsRepo) GetFlagByName(ctx context.Context, name string) (domain.Flag, error) {
	row, err := r.q.GetFlagByName(ctx, name)
	if err != nil {
		return domain.Flag{}, mapNotFound(err)
	}
	return mapFlag(row), nil
}

func (r *flagsRepo) FlagExists(ctx context.Context, name string) (bool, error) {
	n, err := r.q.FlagExists(ctx, name)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func (r *flagsRepo) ListFlags(ctx context.Context) ([]domain.Flag, error) {
	rows, err := r.q.ListFlags(ctx)
	if err != nil {
		return nil, err
	}

	flags := make([]domain.Flag, len(rows))
	for i, row := range rows {
		flags[i] = mapFlag(row)
	}
	return flags, nil
}

func (r *flagsRepo) CountFlags(ctx context.Context) (int64, error) {
	return r.q.CountFlags(ctx)
}

func (r *flagsRepo) CreateFlag(ctx context.Context, f domain.Flag) error {
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := f.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	err := r.q.CreateFlag(ctx, gen.CreateFlagParams{
		ID:          f.ID,
		Name:        f.Name,
		DisplayName: f.DisplayName,
		Description: f.Description,
		Enabled:     f.Enabled,
		ParentID:    mapOptionalString(f.ParentID),
		CreatedAt:   created.UTC(),
		UpdatedAt:   updated.UTC(),
	})
	return mapConstraint(err)
}

func (r *flagsRepo) UpdateFlagEnabled(ctx context.Context, id string, enabled bool) error {
	return mapRowsAffected(r.q.UpdateFlagEnabled(ctx, gen.UpdateFlagEnabledParams{
		Enabled:   enabled,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	}))
}

func (r *flagsRepo) UpdateFlagDetails(ctx context.Context, id, displayName, description string) error {
	return mapRowsAffected(r.q.UpdateFlagDetails(ctx, gen.UpdateFlagDetailsParams{
		DisplayName: displayName,
		Description: description,
		UpdatedAt:   time.Now().UTC(),
		ID:          id,
	}))
}

func (r *flagsRepo) UpdateFlagParent(ctx context.Context, id string, parentID *string) error {
	return mapRowsAffected(r.q.UpdateFlagParent(ctx, gen.UpdateFlagParentParams{
		ParentID:  mapOptionalString(parentID),
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	}))
}

func (r *flagsRepo) DeleteFlag(ctx context.Context, id string) error {
	return mapRowsAffected(r.q.DeleteFlag(ctx, id))
}
