package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/media"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

type (
	Users struct {
		db     *gorm.DB
		graph  *graph.Graph
		media  media.Store
		cfg    *config.Config
		logger *zap.SugaredLogger
	}

	UserCreate struct {
		Username  string `json:"username" validate:"required,max=80"`
		Email     string `json:"email" validate:"required,email,max=120"`
		Password  string `json:"password" validate:"required,min=6"`
		FirstName string `json:"first_name" validate:"max=80"`
		LastName  string `json:"last_name" validate:"max=80"`
	}

	// UserUpdate lists every field a PUT may touch. Nil fields are left alone.
	UserUpdate struct {
		Email       *string `json:"email" validate:"omitempty,email,max=120"`
		Password    *string `json:"password" validate:"omitempty,min=6"`
		FirstName   *string `json:"first_name" validate:"omitempty,max=80"`
		LastName    *string `json:"last_name" validate:"omitempty,max=80"`
		Description *string `json:"description"`
		Github      *string `json:"github" validate:"omitempty,url"`
		Linkedin    *string `json:"linkedin" validate:"omitempty,url"`
		Facebook    *string `json:"facebook" validate:"omitempty,url"`
		Twitter     *string `json:"twitter" validate:"omitempty,url"`
		Website     *string `json:"website" validate:"omitempty,url"`

		SiteAdmin   *bool `json:"site_admin"`
		SiteCurator *bool `json:"site_curator"`
		APIWrite    *bool `json:"api_write"`
	}

	UserQuery struct {
		Paging
		Search   string `query:"search"`
		Sort     string `query:"sort" validate:"omitempty,oneof=hearts -hearts created_at -created_at username -username"`
		Username string `query:"username"`
		Email    string `query:"email"`
	}

	UserDetail struct {
		User            *models.User
		Hearters        []models.User
		Heartees        []models.User
		HeartedProjects []models.Project
		MemberProjects  []models.Project
		AdminProjects   []models.Project
		JoinRequests    []models.JoinRequest
	}

	// UserHeartInput names the heartee by username. A nil Heart toggles.
	UserHeartInput struct {
		Heartee string `json:"heartee" validate:"required"`
		Heart   *bool  `json:"heart"`
	}

	UserHeartResult struct {
		Hearter *models.User
		Heartee *models.User
		Hearted bool
	}
)

func NewUsers(db *gorm.DB, g *graph.Graph, store media.Store, cfg *config.Config, l *zap.SugaredLogger) *Users {
	return &Users{
		db:     db,
		graph:  g,
		media:  store,
		cfg:    cfg,
		logger: l,
	}
}

func (u UserUpdate) protected() bool {
	return u.SiteAdmin != nil || u.SiteCurator != nil || u.APIWrite != nil
}

func (u UserUpdate) basic() bool {
	return u.Email != nil || u.Password != nil || u.FirstName != nil || u.LastName != nil ||
		u.Description != nil || u.Github != nil || u.Linkedin != nil || u.Facebook != nil ||
		u.Twitter != nil || u.Website != nil
}

func (s *Users) Register(ctx context.Context, actor *models.User, in UserCreate) (*models.User, error) {
	if !permission.CanCreateUser(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to create a user.")
	}

	model := models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verr := &apperr.ValidationError{}
		if taken, err := exists(tx, &models.User{}, "username = ?", model.Username); err != nil {
			return err
		} else if taken {
			verr.Add("username", msgUsernameTaken)
		}
		if taken, err := exists(tx, &models.User{}, "email = ?", model.Email); err != nil {
			return err
		} else if taken {
			verr.Add("email", msgEmailTaken)
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		hash, err := bcryptGen(in.Password, s.cfg.BcryptCost)
		if err != nil {
			return errors.Wrap(err, "bcryptGen")
		}
		model.Password = hash

		if err := tx.Create(&model).Error; err != nil {
			return saveFailed(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("user registered", "user", model.ID, "username", model.Username)
	return &model, nil
}

func (s *Users) Get(ctx context.Context, id uint64) (*UserDetail, error) {
	user := models.User{}
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "id", msgNoUserID)
	}

	detail := UserDetail{User: &user}
	var err error
	if detail.Hearters, err = s.graph.Hearters(ctx, id); err != nil {
		return nil, err
	}
	if detail.Heartees, err = s.graph.Heartees(ctx, id); err != nil {
		return nil, err
	}
	if detail.HeartedProjects, err = s.graph.HeartedProjects(ctx, id); err != nil {
		return nil, err
	}
	if detail.MemberProjects, err = s.graph.MemberProjects(ctx, id); err != nil {
		return nil, err
	}
	if detail.AdminProjects, err = s.graph.AdminProjects(ctx, id); err != nil {
		return nil, err
	}

	detail.JoinRequests = make([]models.JoinRequest, 0)
	res := s.db.WithContext(ctx).Preload("Project").Where("user_id = ?", id).Order("id").Find(&detail.JoinRequests)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find join requests")
	}
	return &detail, nil
}

func (s *Users) List(ctx context.Context, q UserQuery) ([]models.User, error) {
	w := squirrel.And{}
	if q.Username != "" {
		w = append(w, squirrel.Eq{"u.username": q.Username})
	}
	if q.Email != "" {
		w = append(w, squirrel.Eq{"u.email": q.Email})
	}
	if q.Search != "" {
		w = append(w, search(q.Search, "u.username", "u.first_name", "u.last_name"))
	}

	b := squirrel.Select("u.*").From("users u").Where(w)
	b = paginate(orderBy(b, "u", q.Sort), q.Paging)
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	users := make([]models.User, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&users).Error; err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	return users, nil
}

// Update applies a partial update. Role flags need staff rights, every other field
// needs the actor to be the user.
func (s *Users) Update(ctx context.Context, actor *models.User, id uint64, in UserUpdate) (*models.User, error) {
	user := models.User{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "id", msgNoUserID)
		}
		if in.protected() && !permission.CanUpdateProtectedUserFields(actor) {
			return apperr.Deny(actor, msgDenyProtected)
		}
		if (in.basic() || !in.protected()) && !permission.CanUpdateUser(actor, &user) {
			return apperr.Deny(actor, msgDenyBasic)
		}

		updates := map[string]interface{}{}
		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			taken, err := exists(tx, &models.User{}, "email = ? AND id <> ?", email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Invalid("email", msgEmailTaken)
			}
			updates["email"] = email
		}
		if in.Password != nil {
			hash, err := bcryptGen(*in.Password, s.cfg.BcryptCost)
			if err != nil {
				return errors.Wrap(err, "bcryptGen")
			}
			updates["password"] = hash
		}
		setIf(updates, "first_name", in.FirstName)
		setIf(updates, "last_name", in.LastName)
		setIf(updates, "description", in.Description)
		setIf(updates, "link_github", in.Github)
		setIf(updates, "link_linkedin", in.Linkedin)
		setIf(updates, "link_facebook", in.Facebook)
		setIf(updates, "link_twitter", in.Twitter)
		setIf(updates, "link_website", in.Website)
		setIf(updates, "site_admin", in.SiteAdmin)
		setIf(updates, "site_curator", in.SiteCurator)
		setIf(updates, "api_write", in.APIWrite)
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return saveFailed(err)
		}
		return errors.Wrap(tx.First(&user, id).Error, "reload user")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) Delete(ctx context.Context, actor *models.User, id uint64) error {
	user := models.User{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, "id", msgNoUserID)
		}
		if !permission.CanDestroyUser(actor, &user) {
			return apperr.Deny(actor, msgDenyDeleteUser)
		}
		if err := graph.DetachUser(tx, user.ID); err != nil {
			return err
		}
		return errors.Wrap(tx.Delete(&user).Error, "delete user")
	})
	if err != nil {
		return err
	}

	if user.ImageKey != "" {
		if err := s.media.Delete(ctx, user.ImageKey); err != nil {
			s.logger.Warnw("could not delete user image", "user", id, "key", user.ImageKey, "error", err)
		}
	}
	s.logger.Infow("user deleted", "user", id)
	return nil
}

// SetImage stores a new avatar and points the user at it. The previous image is removed.
func (s *Users) SetImage(ctx context.Context, actor *models.User, id uint64, filename, contentType string, body io.Reader) (*models.User, error) {
	user := models.User{}
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "id", msgNoUserID)
	}
	if !permission.CanWriteUser(actor, &user) {
		return nil, apperr.Deny(actor, msgDenyBasic)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Invalid("image", "The uploaded file must be an image.")
	}

	key := fmt.Sprintf("users/%d/%s%s", user.ID, uuid.New().String(), strings.ToLower(path.Ext(filename)))
	url, err := s.media.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, errors.Wrap(err, "store image")
	}

	previous := user.ImageKey
	res := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"image":     url,
		"image_key": key,
	})
	if res.Error != nil {
		return nil, saveFailed(res.Error)
	}
	user.Image, user.ImageKey = url, key
	if previous != "" {
		if err := s.media.Delete(ctx, previous); err != nil {
			s.logger.Warnw("could not delete previous user image", "user", id, "key", previous, "error", err)
		}
	}
	return &user, nil
}

// Heart hearts, unhearts or toggles the heartee named in the input.
func (s *Users) Heart(ctx context.Context, actor *models.User, in UserHeartInput) (*UserHeartResult, error) {
	if !permission.IsAuthenticated(actor) {
		return nil, apperr.Unauthenticated(msgNotAuthed)
	}
	heartee := models.User{}
	if err := s.db.WithContext(ctx).Where("username = ?", in.Heartee).First(&heartee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Invalid("heartee", msgNoUsername)
		}
		return nil, errors.Wrap(err, "find heartee")
	}

	var (
		state *graph.HeartState
		err   error
	)
	switch {
	case in.Heart == nil:
		state, err = s.graph.ToggleUserHeart(ctx, actor, heartee.ID)
	case *in.Heart:
		state, err = s.graph.HeartUser(ctx, actor, heartee.ID)
	default:
		state, err = s.graph.UnheartUser(ctx, actor, heartee.ID)
	}
	if err != nil {
		return nil, err
	}
	return s.heartResult(ctx, actor.ID, heartee.ID, state)
}

// ToggleHeart flips the actor's heart on the user with the given id.
func (s *Users) ToggleHeart(ctx context.Context, actor *models.User, id uint64) (*UserHeartResult, error) {
	state, err := s.graph.ToggleUserHeart(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.heartResult(ctx, actor.ID, id, state)
}

func (s *Users) heartResult(ctx context.Context, hearterID, hearteeID uint64, state *graph.HeartState) (*UserHeartResult, error) {
	hearter, heartee := models.User{}, models.User{}
	if err := s.db.WithContext(ctx).First(&hearter, hearterID).Error; err != nil {
		return nil, errors.Wrap(err, "reload hearter")
	}
	if err := s.db.WithContext(ctx).First(&heartee, hearteeID).Error; err != nil {
		return nil, errors.Wrap(err, "reload heartee")
	}
	return &UserHeartResult{
		Hearter: &hearter,
		Heartee: &heartee,
		Hearted: state.Hearted,
	}, nil
}

func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count")
	}
	return count > 0, nil
}

func setIf(updates map[string]interface{}, column string, value interface{}) {
	switch v := value.(type) {
	case *string:
		if v != nil {
			updates[column] = *v
		}
	case *bool:
		if v != nil {
			updates[column] = *v
		}
	case *uint64:
		if v != nil {
			updates[column] = *v
		}
	}
}
