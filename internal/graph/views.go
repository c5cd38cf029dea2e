package graph

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

// Hearters returns the users that heart the given user.
func (g *Graph) Hearters(ctx context.Context, userID uint64) ([]models.User, error) {
	return g.users(ctx, "user_hearts e ON e.hearter_id = u.id", squirrel.Eq{"e.heartee_id": userID})
}

// Heartees returns the users the given user hearts.
func (g *Graph) Heartees(ctx context.Context, userID uint64) ([]models.User, error) {
	return g.users(ctx, "user_hearts e ON e.heartee_id = u.id", squirrel.Eq{"e.hearter_id": userID})
}

func (g *Graph) ProjectHearters(ctx context.Context, projectID uint64) ([]models.User, error) {
	return g.users(ctx, "project_hearts e ON e.user_id = u.id", squirrel.Eq{"e.project_id": projectID})
}

func (g *Graph) HeartedProjects(ctx context.Context, userID uint64) ([]models.Project, error) {
	return g.projects(ctx, "project_hearts e ON e.project_id = p.id", squirrel.Eq{"e.user_id": userID})
}

func (g *Graph) MemberProjects(ctx context.Context, userID uint64) ([]models.Project, error) {
	return g.projects(ctx, "project_members e ON e.project_id = p.id", squirrel.Eq{"e.user_id": userID})
}

func (g *Graph) AdminProjects(ctx context.Context, userID uint64) ([]models.Project, error) {
	return g.projects(ctx, "project_admins e ON e.project_id = p.id", squirrel.Eq{"e.user_id": userID})
}

func (g *Graph) users(ctx context.Context, join string, where squirrel.Eq) ([]models.User, error) {
	sql, args, err := squirrel.Select("u.*").From("users u").
		Join(join).
		Where(where).
		OrderBy("u.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	users := make([]models.User, 0)
	if err := g.db.WithContext(ctx).Raw(sql, args...).Scan(&users).Error; err != nil {
		return nil, errors.Wrap(err, "scan users")
	}
	return users, nil
}

func (g *Graph) projects(ctx context.Context, join string, where squirrel.Eq) ([]models.Project, error) {
	sql, args, err := squirrel.Select("p.*").From("projects p").
		Join(join).
		Where(where).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	projects := make([]models.Project, 0)
	if err := g.db.WithContext(ctx).Raw(sql, args...).Scan(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "scan projects")
	}
	return projects, nil
}
