package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

const (
	msgNoCommentID = "No comment exists with this id."
	msgNoPostID    = "No post exists with this id."
	msgDenyPost    = "You do not have permission to modify this project's posts."
)

type (
	Comments struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	Posts struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	CommentCreate struct {
		Project   uint64 `json:"project" validate:"required"`
		Content   string `json:"content" validate:"required,max=5000"`
		Anonymous bool   `json:"anonymous"`
	}

	CommentUpdate struct {
		Content   *string `json:"content" validate:"omitempty,min=1,max=5000"`
		Anonymous *bool   `json:"anonymous"`
	}

	CommentQuery struct {
		Paging
		Project uint64 `query:"project"`
		User    uint64 `query:"user"`
	}

	PostCreate struct {
		Project uint64 `json:"project" validate:"required"`
		Content string `json:"content" validate:"required"`
		Private bool   `json:"private"`
	}

	PostUpdate struct {
		Content *string `json:"content" validate:"omitempty,min=1"`
		Private *bool   `json:"private"`
	}

	PostQuery struct {
		Paging
		Project uint64 `query:"project"`
	}
)

func NewComments(db *gorm.DB, l *zap.SugaredLogger) *Comments {
	return &Comments{
		db:     db,
		logger: l,
	}
}

func NewPosts(db *gorm.DB, l *zap.SugaredLogger) *Posts {
	return &Posts{
		db:     db,
		logger: l,
	}
}

/////// comments

// List filters by project and author. Anonymous comments are only listed under their
// author for the author themselves and staff.
func (s *Comments) List(ctx context.Context, actor *models.User, q CommentQuery) ([]models.Comment, error) {
	limit, offset := q.limitOffset()
	db := s.db.WithContext(ctx).Preload("User").Order("id").Limit(int(limit)).Offset(int(offset))
	if q.Project != 0 {
		db = db.Where("project_id = ?", q.Project)
	}
	if q.User != 0 {
		db = db.Where("user_id = ?", q.User)
		if !permission.IsStaff(actor) && !(permission.IsAuthenticated(actor) && actor.ID == q.User) {
			db = db.Where("anonymous = ?", false)
		}
	}

	comments := make([]models.Comment, 0)
	if err := db.Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "find comments")
	}
	return comments, nil
}

func (s *Comments) Create(ctx context.Context, actor *models.User, in CommentCreate) (*models.Comment, error) {
	if !permission.CanCreateComment(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to comment.")
	}
	model := models.Comment{
		Content:   in.Content,
		Anonymous: in.Anonymous,
		UserID:    actor.ID,
		ProjectID: in.Project,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Project{}, "id = ?", in.Project)
		if err != nil {
			return err
		}
		if !found {
			return apperr.Invalid("project", msgNoProjectID)
		}
		return saveOrNil(tx.Omit("User", "Project").Create(&model).Error)
	})
	if err != nil {
		return nil, err
	}
	model.User = *actor
	return &model, nil
}

func (s *Comments) Update(ctx context.Context, actor *models.User, id uint64, in CommentUpdate) (*models.Comment, error) {
	model := models.Comment{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, "id", msgNoCommentID)
		}
		if !permission.CanWriteComment(actor, &model) {
			return apperr.Deny(actor, "You do not have permission to modify this comment.")
		}
		updates := map[string]interface{}{}
		setIf(updates, "content", in.Content)
		setIf(updates, "anonymous", in.Anonymous)
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&model).Omit("User", "Project").Updates(updates).Error; err != nil {
			return saveFailed(err)
		}
		return errors.Wrap(tx.Preload("User").First(&model, id).Error, "reload comment")
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *Comments) Delete(ctx context.Context, actor *models.User, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.Comment{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, "id", msgNoCommentID)
		}
		if !permission.CanWriteComment(actor, &model) {
			return apperr.Deny(actor, "You do not have permission to delete this comment.")
		}
		return errors.Wrap(tx.Delete(&models.Comment{}, id).Error, "delete comment")
	})
}

/////// posts

// List returns posts with their project roles loaded so callers can decide which
// private contents the actor may read.
func (s *Posts) List(ctx context.Context, q PostQuery) ([]models.Post, error) {
	limit, offset := q.limitOffset()
	db := s.withRoles(ctx).Preload("User").Order("id").Limit(int(limit)).Offset(int(offset))
	if q.Project != 0 {
		db = db.Where("project_id = ?", q.Project)
	}
	posts := make([]models.Post, 0)
	if err := db.Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "find posts")
	}
	return posts, nil
}

func (s *Posts) Get(ctx context.Context, id uint64) (*models.Post, error) {
	post := models.Post{}
	if err := s.withRoles(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, notFound(err, "id", msgNoPostID)
	}
	return &post, nil
}

// Create checks the actor against the post it would create, so only the project's
// admins and staff can post.
func (s *Posts) Create(ctx context.Context, actor *models.User, in PostCreate) (*models.Post, error) {
	if !permission.IsAuthenticated(actor) {
		return nil, apperr.Deny(actor, msgDenyPost)
	}
	model := models.Post{
		Content:   in.Content,
		Private:   in.Private,
		UserID:    actor.ID,
		ProjectID: in.Project,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		if err := tx.Preload("Members").Preload("Admins").First(&project, in.Project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("project", msgNoProjectID)
			}
			return errors.Wrap(err, "load project")
		}
		model.Project = project
		if !permission.CanWriteProjectPost(actor, &model) {
			return apperr.Deny(actor, msgDenyPost)
		}
		return saveOrNil(tx.Omit("User", "Project").Create(&model).Error)
	})
	if err != nil {
		return nil, err
	}
	model.User = *actor
	return &model, nil
}

func (s *Posts) Update(ctx context.Context, actor *models.User, id uint64, in PostUpdate) (*models.Post, error) {
	model := models.Post{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project.Admins").First(&model, id).Error; err != nil {
			return notFound(err, "id", msgNoPostID)
		}
		if !permission.CanWriteProjectPost(actor, &model) {
			return apperr.Deny(actor, msgDenyPost)
		}
		updates := map[string]interface{}{}
		setIf(updates, "content", in.Content)
		setIf(updates, "private", in.Private)
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return saveFailed(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Posts) Delete(ctx context.Context, actor *models.User, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.Post{}
		if err := tx.Preload("Project.Admins").First(&model, id).Error; err != nil {
			return notFound(err, "id", msgNoPostID)
		}
		if !permission.CanWriteProjectPost(actor, &model) {
			return apperr.Deny(actor, msgDenyPost)
		}
		return errors.Wrap(tx.Delete(&models.Post{}, id).Error, "delete post")
	})
}

func (s *Posts) withRoles(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Project.Members").Preload("Project.Admins")
}
