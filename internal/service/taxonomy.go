package service

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

type (
	Tags struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	Categories struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	TagInput struct {
		Name string `json:"name" validate:"required,max=50"`
	}

	CategoryInput struct {
		Name string `json:"name" validate:"required,max=50"`
	}
)

func NewTags(db *gorm.DB, l *zap.SugaredLogger) *Tags {
	return &Tags{
		db:     db,
		logger: l,
	}
}

func NewCategories(db *gorm.DB, l *zap.SugaredLogger) *Categories {
	return &Categories{
		db:     db,
		logger: l,
	}
}

/////// tags

func (s *Tags) List(ctx context.Context, term string) ([]models.Tag, error) {
	b := squirrel.Select("t.*").From("tags t").OrderBy("t.name")
	if term != "" {
		b = b.Where(search(term, "t.name"))
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	tags := make([]models.Tag, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	return tags, nil
}

func (s *Tags) Create(ctx context.Context, actor *models.User, in TagInput) (*models.Tag, error) {
	if !permission.CanCreateTag(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to create a tag.")
	}
	model := models.Tag{Name: strings.TrimSpace(in.Name)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, &models.Tag{}, model.Name, 0, "A tag already exists with this name."); err != nil {
			return err
		}
		return saveOrNil(tx.Create(&model).Error)
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *Tags) Update(ctx context.Context, actor *models.User, id uint64, in TagInput) (*models.Tag, error) {
	if !permission.CanWriteTag(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to modify this tag.")
	}
	model := models.Tag{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, "id", "No tag exists with this id.")
		}
		name := strings.TrimSpace(in.Name)
		if err := uniqueName(tx, &models.Tag{}, name, id, "A tag already exists with this name."); err != nil {
			return err
		}
		model.Name = name
		return saveOrNil(tx.Model(&model).Update("name", name).Error)
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *Tags) Delete(ctx context.Context, actor *models.User, id uint64) error {
	if !permission.CanWriteTag(actor) {
		return apperr.Deny(actor, "You do not have permission to delete this tag.")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Tag{}, id).Error; err != nil {
			return notFound(err, "id", "No tag exists with this id.")
		}
		if err := tx.Exec("DELETE FROM project_tags WHERE tag_id = ?", id).Error; err != nil {
			return errors.Wrap(err, "delete tag links")
		}
		return errors.Wrap(tx.Delete(&models.Tag{}, id).Error, "delete tag")
	})
}

/////// categories

func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "find categories")
	}
	return categories, nil
}

func (s *Categories) Create(ctx context.Context, actor *models.User, in CategoryInput) (*models.Category, error) {
	if !permission.CanCreateCategory(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to create a category.")
	}
	model := models.Category{Name: strings.TrimSpace(in.Name)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, &models.Category{}, model.Name, 0, "A category already exists with this name."); err != nil {
			return err
		}
		return saveOrNil(tx.Create(&model).Error)
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (s *Categories) Update(ctx context.Context, actor *models.User, id uint64, in CategoryInput) (*models.Category, error) {
	if !permission.CanWriteCategory(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to modify this category.")
	}
	model := models.Category{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, "id", msgNoCategoryID)
		}
		name := strings.TrimSpace(in.Name)
		if err := uniqueName(tx, &models.Category{}, name, id, "A category already exists with this name."); err != nil {
			return err
		}
		model.Name = name
		return saveOrNil(tx.Model(&model).Update("name", name).Error)
	})
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// Delete leaves the category's projects uncategorized.
func (s *Categories) Delete(ctx context.Context, actor *models.User, id uint64) error {
	if !permission.CanWriteCategory(actor) {
		return apperr.Deny(actor, "You do not have permission to delete this category.")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Category{}, id).Error; err != nil {
			return notFound(err, "id", msgNoCategoryID)
		}
		res := tx.Model(&models.Project{}).Where("category_id = ?", id).Update("category_id", nil)
		if res.Error != nil {
			return errors.Wrap(res.Error, "clear project categories")
		}
		return errors.Wrap(tx.Delete(&models.Category{}, id).Error, "delete category")
	})
}

func uniqueName(tx *gorm.DB, model interface{}, name string, exceptID uint64, message string) error {
	taken, err := exists(tx, model, "name = ? AND id <> ?", name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Invalid("name", message)
	}
	return nil
}

func saveOrNil(err error) error {
	if err != nil {
		return saveFailed(err)
	}
	return nil
}
