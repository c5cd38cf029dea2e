package graph

import (
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DetachUser removes every relation the user takes part in so the user row can be
// deleted. Counters of users and projects the user hearted are recomputed. It must run
// inside the deleting transaction; authorization is the caller's.
//
// The user row and every hearted target are locked before any edge is removed, the
// same rows a heart transaction locks, so the recounts cannot miss a concurrent heart.
func DetachUser(tx *gorm.DB, userID uint64) error {
	if err := lockRows(tx, "users", []uint64{userID}); err != nil {
		return err
	}
	heartees, err := lockHeartTargets(tx, userHearts, userID)
	if err != nil {
		return err
	}
	projects, err := lockHeartTargets(tx, projectHearts, userID)
	if err != nil {
		return err
	}

	deletes := []struct {
		table string
		where squirrel.Sqlizer
	}{
		{"user_hearts", squirrel.Or{squirrel.Eq{"hearter_id": userID}, squirrel.Eq{"heartee_id": userID}}},
		{"project_hearts", squirrel.Eq{"user_id": userID}},
		{"project_members", squirrel.Eq{"user_id": userID}},
		{"project_admins", squirrel.Eq{"user_id": userID}},
		{"join_requests", squirrel.Eq{"user_id": userID}},
		{"comments", squirrel.Eq{"user_id": userID}},
		{"posts", squirrel.Eq{"user_id": userID}},
	}
	for _, d := range deletes {
		if err := deleteWhere(tx, d.table, d.where); err != nil {
			return err
		}
	}

	for _, id := range heartees {
		if id == userID {
			continue
		}
		if _, err := recountHearts(tx, userHearts, id); err != nil {
			return err
		}
	}
	for _, id := range projects {
		if _, err := recountHearts(tx, projectHearts, id); err != nil {
			return err
		}
	}
	return nil
}

// DetachProject removes the project's edges, roles, tags and owned content. The
// project row is locked first so pending hearts on it finish before the edges go.
func DetachProject(tx *gorm.DB, projectID uint64) error {
	if err := lockRows(tx, "projects", []uint64{projectID}); err != nil {
		return err
	}
	for _, table := range []string{
		"project_hearts", "project_members", "project_admins", "project_tags",
		"join_requests", "comments", "posts",
	} {
		if err := deleteWhere(tx, table, squirrel.Eq{"project_id": projectID}); err != nil {
			return err
		}
	}
	return nil
}

// lockHeartTargets locks, in ascending id order, every target the actor hearts and
// returns their ids. Targets hearted while waiting for a lock are picked up by the
// next round.
func lockHeartTargets(tx *gorm.DB, kind edgeKind, actorID uint64) ([]uint64, error) {
	locked := map[uint64]struct{}{}
	for {
		var ids []uint64
		err := tx.Table(kind.edgeTable).
			Where(kind.actorColumn+" = ?", actorID).
			Pluck(kind.targetColumn, &ids).Error
		if err != nil {
			return nil, errors.Wrapf(err, "pluck %s", kind.targetColumn)
		}

		pending := make([]uint64, 0, len(ids))
		for _, id := range ids {
			if _, ok := locked[id]; !ok {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			break
		}
		if err := lockRows(tx, kind.targetTable, pending); err != nil {
			return nil, err
		}
		for _, id := range pending {
			locked[id] = struct{}{}
		}
	}

	res := make([]uint64, 0, len(locked))
	for id := range locked {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

func lockRows(tx *gorm.DB, table string, ids []uint64) error {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var got []uint64
	err := lockForUpdate(tx).Table(table).Where("id IN ?", ids).Order("id").Pluck("id", &got).Error
	return errors.Wrapf(err, "lock %s", table)
}

func deleteWhere(tx *gorm.DB, table string, where squirrel.Sqlizer) error {
	sql, args, err := squirrel.Delete(table).Where(where).ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql")
	}
	if err := tx.Exec(sql, args...).Error; err != nil {
		return errors.Wrapf(err, "delete from %s", table)
	}
	return nil
}
