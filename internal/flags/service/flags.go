package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
	"github.com/aussiebroadwan/flagtree/internal/flags/store"
	"github.com/aussiebroadwan/flagtree/pkg/idx"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
)

// CreateFlagInput describes a new flag. ParentName is optional.
type CreateFlagInput struct {
	Name        string
	DisplayName string
	Description string
	ParentName  *string
}

// FlagService is the entry point for everything flag related. Reads evaluate
// against a cached snapshot of the whole record set; writes validate and
// mutate inside a store transaction and then drop that snapshot.
type FlagService struct {
	Store    store.Store
	Cache    *cache.Snapshots
	Resolver *hierarchy.Resolver

	locks keyedMutex
}

// NewFlagService wires a FlagService. A nil snapshots cache disables caching.
func NewFlagService(s store.Store, snapshots *cache.Snapshots, maxDepth int) *FlagService {
	if snapshots == nil {
		snapshots = cache.NewSnapshots(cache.NewNoop(), 0)
	}
	return &FlagService{
		Store:    s,
		Cache:    snapshots,
		Resolver: hierarchy.NewResolver(maxDepth),
	}
}

func (s *FlagService) maxDepth() int { return s.Resolver.MaxDepth }

// Create inserts a new, disabled flag. When a parent is named it must exist
// and the placement must pass the cycle guard.
func (s *FlagService) Create(ctx context.Context, in CreateFlagInput) (domain.Flag, error) {
	l := slogx.FromContext(ctx)

	if err := ValidateName(in.Name); err != nil {
		return domain.Flag{}, fmt.Errorf("%w: %q", err, in.Name)
	}

	unlock := s.locks.Lock(in.Name)
	defer unlock()

	now := time.Now().UTC()
	rec := domain.Flag{
		ID:          idx.NewAt(now).String(),
		Name:        in.Name,
		DisplayName: in.DisplayName,
		Description: in.Description,
		Enabled:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		exists, err := tx.Flags().FlagExists(ctx, in.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", ErrDuplicateFlagName, in.Name)
		}

		if in.ParentName != nil {
			parent, err := getByName(ctx, tx, *in.ParentName)
			if err != nil {
				return parentErr(err, *in.ParentName)
			}
			snap, err := txSnapshot(ctx, tx)
			if err != nil {
				return err
			}
			if err := hierarchy.ValidatePlacement(rec.ID, &parent.ID, snap, s.maxDepth()); err != nil {
				return err
			}
			rec.ParentID = &parent.ID
		}

		if err := tx.Flags().CreateFlag(ctx, rec); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: %q", ErrDuplicateFlagName, in.Name)
			}
			return err
		}

		rec, err = tx.Flags().GetFlagByID(ctx, rec.ID)
		return err
	})
	if err != nil {
		l.Warn("flag create rejected", "flag", in.Name, "error", err)
		return domain.Flag{}, err
	}

	s.invalidate(ctx)
	l.Info("flag created", "flag", rec.Name, "flag_id", rec.ID, "parent_id", rec.ParentIDValue())
	return rec, nil
}

// Get returns the stored record for name.
func (s *FlagService) Get(ctx context.Context, name string) (domain.Flag, error) {
	return getByName(ctx, s.Store, name)
}

// ListAll returns every record ordered by name.
func (s *FlagService) ListAll(ctx context.Context) ([]domain.Flag, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Flag(nil), snap.Flags()...), nil
}

// ListTree returns the flag forest with effective state per node. Malformed
// data is cut and logged, never returned as an error.
func (s *FlagService) ListTree(ctx context.Context) ([]hierarchy.TreeNode, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Resolver.BuildTree(ctx, snap), nil
}

// Update sets the flag's own enabled bit.
func (s *FlagService) Update(ctx context.Context, name string, enabled bool) (domain.Flag, error) {
	return s.mutate(ctx, name, "flag updated", func(tx store.Tx, rec domain.Flag) error {
		return tx.Flags().UpdateFlagEnabled(ctx, rec.ID, enabled)
	}, "enabled", enabled)
}

// UpdateDetails edits the free-text fields. Nil leaves a field unchanged.
func (s *FlagService) UpdateDetails(ctx context.Context, name string, displayName, description *string) (domain.Flag, error) {
	return s.Patch(ctx, name, FlagPatch{DisplayName: displayName, Description: description})
}

// FlagPatch carries the fields Patch changes. Nil leaves a field unchanged.
type FlagPatch struct {
	Enabled     *bool
	DisplayName *string
	Description *string
}

// Patch applies every field of p in one transaction, so a concurrent write to
// the same flag sees either none or all of it.
func (s *FlagService) Patch(ctx context.Context, name string, p FlagPatch) (domain.Flag, error) {
	logArgs := []any{}
	if p.Enabled != nil {
		logArgs = append(logArgs, "enabled", *p.Enabled)
	}
	return s.mutate(ctx, name, "flag patched", func(tx store.Tx, rec domain.Flag) error {
		if p.DisplayName != nil || p.Description != nil {
			dn, desc := rec.DisplayName, rec.Description
			if p.DisplayName != nil {
				dn = *p.DisplayName
			}
			if p.Description != nil {
				desc = *p.Description
			}
			if err := tx.Flags().UpdateFlagDetails(ctx, rec.ID, dn, desc); err != nil {
				return err
			}
		}
		if p.Enabled != nil {
			return tx.Flags().UpdateFlagEnabled(ctx, rec.ID, *p.Enabled)
		}
		return nil
	}, logArgs...)
}

// Reparent moves name under parentName, or to the top level when parentName
// is nil. A move that would create a loop or overflow the depth bound fails
// with ErrCycleDetected and leaves storage untouched.
func (s *FlagService) Reparent(ctx context.Context, name string, parentName *string) (domain.Flag, error) {
	return s.mutate(ctx, name, "flag reparented", func(tx store.Tx, rec domain.Flag) error {
		var parentID *string
		if parentName != nil {
			parent, err := getByName(ctx, tx, *parentName)
			if err != nil {
				return parentErr(err, *parentName)
			}
			snap, err := txSnapshot(ctx, tx)
			if err != nil {
				return err
			}
			if err := hierarchy.ValidatePlacement(rec.ID, &parent.ID, snap, s.maxDepth()); err != nil {
				return err
			}
			parentID = &parent.ID
		}
		return tx.Flags().UpdateFlagParent(ctx, rec.ID, parentID)
	}, "parent", derefOr(parentName, ""))
}

// Delete removes name and, by cascade, all of its descendants.
func (s *FlagService) Delete(ctx context.Context, name string) error {
	l := slogx.FromContext(ctx)

	unlock := s.locks.Lock(name)
	defer unlock()

	var removed []string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := getByName(ctx, tx, name)
		if err != nil {
			return err
		}
		snap, err := txSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		removed = descendantNames(snap, rec.ID)

		return mapStoreErr(tx.Flags().DeleteFlag(ctx, rec.ID), name)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	l.Info("flag deleted", "flag", name, "cascaded", removed)
	return nil
}

// IsEnabled reports the effective state of name. It never fails: unknown
// names, malformed hierarchies and storage errors all read as false.
func (s *FlagService) IsEnabled(ctx context.Context, name string) bool {
	snap, err := s.snapshot(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("flag evaluation failed, treating as disabled", "flag", name, "error", err)
		return false
	}
	return s.Resolver.IsEffectivelyEnabled(ctx, snap, name)
}

// ListEnabled returns flags whose own bit is set, regardless of ancestors.
func (s *FlagService) ListEnabled(ctx context.Context) ([]domain.Flag, error) {
	return s.filterOwn(ctx, true)
}

// ListDisabled returns flags whose own bit is clear, regardless of ancestors.
func (s *FlagService) ListDisabled(ctx context.Context) ([]domain.Flag, error) {
	return s.filterOwn(ctx, false)
}

// Audit scans the record set for cycles, dangling parents, depth overflows
// and unreachable records.
func (s *FlagService) Audit(ctx context.Context) ([]hierarchy.Anomaly, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Resolver.Audit(snap), nil
}

func (s *FlagService) filterOwn(ctx context.Context, enabled bool) ([]domain.Flag, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Flag, 0, len(all))
	for _, f := range all {
		if f.Enabled == enabled {
			out = append(out, f)
		}
	}
	return out, nil
}

// mutate runs fn against the current record for name inside a transaction
// holding the per-name lock, then returns the stored result.
func (s *FlagService) mutate(
	ctx context.Context,
	name, msg string,
	fn func(tx store.Tx, rec domain.Flag) error,
	logArgs ...any,
) (domain.Flag, error) {
	l := slogx.FromContext(ctx)

	unlock := s.locks.Lock(name)
	defer unlock()

	var out domain.Flag
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := getByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := fn(tx, rec); err != nil {
			return mapStoreErr(err, name)
		}
		out, err = tx.Flags().GetFlagByID(ctx, rec.ID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrFlagNotFound) {
			l.Warn(msg+" rejected", append([]any{"flag", name, "error", err}, logArgs...)...)
		}
		return domain.Flag{}, err
	}

	s.invalidate(ctx)
	l.Info(msg, append([]any{"flag", name}, logArgs...)...)
	return out, nil
}

func (s *FlagService) snapshot(ctx context.Context) (*hierarchy.Snapshot, error) {
	snap, err := s.Cache.Load(ctx, s.Store.Flags().ListFlags)
	if err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}
	return snap, nil
}

func (s *FlagService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		slogx.FromContext(ctx).Error("flag cache invalidation failed", "error", err)
	}
}

// txSnapshot reads the record set through tx, bypassing the cache, so the
// guard validates against exactly what the transaction will commit over.
func txSnapshot(ctx context.Context, tx store.Tx) (*hierarchy.Snapshot, error) {
	flags, err := tx.Flags().ListFlags(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.NewSnapshot(flags), nil
}

func getByName(ctx context.Context, s store.Store, name string) (domain.Flag, error) {
	rec, err := s.Flags().GetFlagByName(ctx, name)
	if err != nil {
		return domain.Flag{}, mapStoreErr(err, name)
	}
	return rec, nil
}

func mapStoreErr(err error, name string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrFlagNotFound, name)
	}
	return err
}

func parentErr(err error, parentName string) error {
	if errors.Is(err, ErrFlagNotFound) {
		return fmt.Errorf("%w: %w: %q", ErrParentNotFound, ErrFlagNotFound, parentName)
	}
	return err
}

// descendantNames lists every record below id, breadth first.
func descendantNames(snap *hierarchy.Snapshot, id string) []string {
	children := make(map[string][]domain.Flag)
	for _, f := range snap.Flags() {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f)
		}
	}

	var names []string
	seen := map[string]struct{}{id: {}}
	queue := []string{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, c := range children[next] {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			names = append(names, c.Name)
			queue = append(queue, c.ID)
		}
	}
	return names
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
