/*Package graph maintains the social and membership relations between users and projects.

Hearts are edges in user_hearts and project_hearts. The hearts counter of the target is
never incremented in memory: after an edge is inserted or removed the counter is
recomputed from the edge table inside the same transaction, so it always equals the
number of hearters once the transaction commits.
*/
package graph

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

type heartMode int

const (
	heartToggle heartMode = iota
	heartOn
	heartOff
)

type (
	Graph struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	// HeartState is the target's state after a heart mutation.
	HeartState struct {
		Hearted bool
		Hearts  int64
	}

	// edgeKind describes one heart relation: which table holds the edges and which
	// column of it points at the hearted target.
	edgeKind struct {
		targetTable  string
		edgeTable    string
		actorColumn  string
		targetColumn string
		field        string
		alreadyOn    string
		alreadyOff   string
	}
)

var (
	userHearts = edgeKind{
		targetTable:  "users",
		edgeTable:    "user_hearts",
		actorColumn:  "hearter_id",
		targetColumn: "heartee_id",
		field:        "heartee",
		alreadyOn:    "You have already hearted this user.",
		alreadyOff:   "You have already unhearted this user.",
	}
	projectHearts = edgeKind{
		targetTable:  "projects",
		edgeTable:    "project_hearts",
		actorColumn:  "user_id",
		targetColumn: "project_id",
		field:        "project",
		alreadyOn:    "You have already hearted this project.",
		alreadyOff:   "You have already unhearted this project.",
	}
)

func NewGraph(db *gorm.DB, l *zap.SugaredLogger) *Graph {
	return &Graph{
		db:     db,
		logger: l,
	}
}

/////// user hearts

func (g *Graph) ToggleUserHeart(ctx context.Context, actor *models.User, hearteeID uint64) (*HeartState, error) {
	return g.userHeart(ctx, actor, hearteeID, heartToggle)
}

// HeartUser fails with a conflict when the actor already hearts the user.
func (g *Graph) HeartUser(ctx context.Context, actor *models.User, hearteeID uint64) (*HeartState, error) {
	return g.userHeart(ctx, actor, hearteeID, heartOn)
}

// UnheartUser fails with a conflict when the actor does not heart the user.
func (g *Graph) UnheartUser(ctx context.Context, actor *models.User, hearteeID uint64) (*HeartState, error) {
	return g.userHeart(ctx, actor, hearteeID, heartOff)
}

func (g *Graph) userHeart(ctx context.Context, actor *models.User, hearteeID uint64, mode heartMode) (*HeartState, error) {
	var state *HeartState
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		heartee := models.User{}
		if err := lockForUpdate(tx).First(&heartee, hearteeID).Error; err != nil {
			return notFound(err, "heartee", "No user exists with this id.")
		}
		if !permission.CanHeartUser(actor, &heartee) {
			return apperr.Deny(actor, "You cannot heart this user.")
		}

		edge := models.UserHeart{HearterID: actor.ID, HearteeID: heartee.ID}
		var err error
		state, err = applyHeart(tx, userHearts, &edge, actor.ID, heartee.ID, mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debugw("user heart", "hearter", actor.ID, "heartee", hearteeID, "hearted", state.Hearted, "hearts", state.Hearts)
	return state, nil
}

/////// project hearts

func (g *Graph) ToggleProjectHeart(ctx context.Context, actor *models.User, projectID uint64) (*HeartState, error) {
	return g.projectHeart(ctx, actor, projectID, heartToggle)
}

func (g *Graph) HeartProject(ctx context.Context, actor *models.User, projectID uint64) (*HeartState, error) {
	return g.projectHeart(ctx, actor, projectID, heartOn)
}

func (g *Graph) UnheartProject(ctx context.Context, actor *models.User, projectID uint64) (*HeartState, error) {
	return g.projectHeart(ctx, actor, projectID, heartOff)
}

func (g *Graph) projectHeart(ctx context.Context, actor *models.User, projectID uint64, mode heartMode) (*HeartState, error) {
	var state *HeartState
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		if err := lockForUpdate(tx).First(&project, projectID).Error; err != nil {
			return notFound(err, "project", "No project exists with this id.")
		}
		if !permission.CanHeartProject(actor, &project) {
			return apperr.Deny(actor, "You cannot heart this project.")
		}

		edge := models.ProjectHeart{UserID: actor.ID, ProjectID: project.ID}
		var err error
		state, err = applyHeart(tx, projectHearts, &edge, actor.ID, project.ID, mode)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.logger.Debugw("project heart", "user", actor.ID, "project", projectID, "hearted", state.Hearted, "hearts", state.Hearts)
	return state, nil
}

/////// shared heart machinery

// applyHeart mutates the edge according to mode and recomputes the target counter.
// It must run inside a transaction that already holds the target row.
func applyHeart(tx *gorm.DB, kind edgeKind, edge interface{}, actorID, targetID uint64, mode heartMode) (*HeartState, error) {
	var hearted bool
	switch mode {
	case heartToggle:
		removed, err := deleteEdge(tx, kind, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if !removed {
			if _, err := insertEdge(tx, edge); err != nil {
				return nil, err
			}
			hearted = true
		}
	case heartOn:
		inserted, err := insertEdge(tx, edge)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, apperr.Conflict(kind.field, kind.alreadyOn)
		}
		hearted = true
	case heartOff:
		removed, err := deleteEdge(tx, kind, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, apperr.Conflict(kind.field, kind.alreadyOff)
		}
	}

	hearts, err := recountHearts(tx, kind, targetID)
	if err != nil {
		return nil, err
	}
	return &HeartState{Hearted: hearted, Hearts: hearts}, nil
}

func insertEdge(tx *gorm.DB, edge interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "insert heart edge")
	}
	return res.RowsAffected == 1, nil
}

func deleteEdge(tx *gorm.DB, kind edgeKind, actorID, targetID uint64) (bool, error) {
	sql, args, err := squirrel.Delete(kind.edgeTable).
		Where(squirrel.Eq{kind.actorColumn: actorID, kind.targetColumn: targetID}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "build sql")
	}
	res := tx.Exec(sql, args...)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete heart edge")
	}
	return res.RowsAffected > 0, nil
}

func recountHearts(tx *gorm.DB, kind edgeKind, targetID uint64) (int64, error) {
	count := squirrel.Expr("(SELECT COUNT(*) FROM "+kind.edgeTable+" WHERE "+kind.targetColumn+" = ?)", targetID)
	sql, args, err := squirrel.Update(kind.targetTable).
		Set("hearts", count).
		Where(squirrel.Eq{"id": targetID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build sql")
	}
	if err := tx.Exec(sql, args...).Error; err != nil {
		return 0, errors.Wrap(err, "recount hearts")
	}

	var hearts int64
	if err := tx.Table(kind.targetTable).Select("hearts").Where("id = ?", targetID).Row().Scan(&hearts); err != nil {
		return 0, errors.Wrap(err, "read hearts")
	}
	return hearts, nil
}

// lockForUpdate serializes concurrent heart transactions on the same target row.
// SQLite has no row locks; its writers are serialized already.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func notFound(err error, field, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(field, message)
	}
	return errors.Wrap(err, "load "+field)
}
