package transport

import (
	"context"
	"io"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/service"
)

type (
	AuthService interface {
		Login(ctx context.Context, in service.Credentials) (*service.Token, error)
		Authenticate(ctx context.Context, raw string) (*models.User, error)
		BasicAuth(ctx context.Context, username, password string) (*models.User, error)
	}

	UserService interface {
		Register(ctx context.Context, actor *models.User, in service.UserCreate) (*models.User, error)
		Get(ctx context.Context, id uint64) (*service.UserDetail, error)
		List(ctx context.Context, q service.UserQuery) ([]models.User, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.UserUpdate) (*models.User, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
		SetImage(ctx context.Context, actor *models.User, id uint64, filename, contentType string, body io.Reader) (*models.User, error)
		Heart(ctx context.Context, actor *models.User, in service.UserHeartInput) (*service.UserHeartResult, error)
		ToggleHeart(ctx context.Context, actor *models.User, id uint64) (*service.UserHeartResult, error)
	}

	ProjectService interface {
		Create(ctx context.Context, actor *models.User, in service.ProjectCreate) (*models.Project, error)
		Get(ctx context.Context, id uint64) (*service.ProjectDetail, error)
		JoinRequests(ctx context.Context, projectID uint64) ([]models.JoinRequest, error)
		List(ctx context.Context, q service.ProjectQuery) ([]models.Project, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.ProjectUpdate) (*models.Project, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
		AddMember(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error)
		RemoveMember(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error)
		AddAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error)
		RemoveAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error)
		Heart(ctx context.Context, actor *models.User, in service.ProjectHeartInput) (*service.ProjectHeartResult, error)
		ToggleHeart(ctx context.Context, actor *models.User, id uint64) (*service.ProjectHeartResult, error)
	}

	JoinRequestService interface {
		Request(ctx context.Context, actor *models.User, projectID uint64, in service.JoinRequestCreate) (*models.JoinRequest, error)
		Withdraw(ctx context.Context, actor *models.User, id uint64) error
		Approve(ctx context.Context, actor *models.User, id uint64) (*models.JoinRequest, error)
		Reject(ctx context.Context, actor *models.User, id uint64) (*models.JoinRequest, error)
	}

	TagService interface {
		List(ctx context.Context, term string) ([]models.Tag, error)
		Create(ctx context.Context, actor *models.User, in service.TagInput) (*models.Tag, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.TagInput) (*models.Tag, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
	}

	CategoryService interface {
		List(ctx context.Context) ([]models.Category, error)
		Create(ctx context.Context, actor *models.User, in service.CategoryInput) (*models.Category, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.CategoryInput) (*models.Category, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
	}

	CommentService interface {
		List(ctx context.Context, actor *models.User, q service.CommentQuery) ([]models.Comment, error)
		Create(ctx context.Context, actor *models.User, in service.CommentCreate) (*models.Comment, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.CommentUpdate) (*models.Comment, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
	}

	PostService interface {
		List(ctx context.Context, q service.PostQuery) ([]models.Post, error)
		Get(ctx context.Context, id uint64) (*models.Post, error)
		Create(ctx context.Context, actor *models.User, in service.PostCreate) (*models.Post, error)
		Update(ctx context.Context, actor *models.User, id uint64, in service.PostUpdate) (*models.Post, error)
		Delete(ctx context.Context, actor *models.User, id uint64) error
	}
)

var (
	_ AuthService        = (*service.Auth)(nil)
	_ UserService        = (*service.Users)(nil)
	_ ProjectService     = (*service.Projects)(nil)
	_ JoinRequestService = (*service.JoinRequests)(nil)
	_ TagService         = (*service.Tags)(nil)
	_ CategoryService    = (*service.Categories)(nil)
	_ CommentService     = (*service.Comments)(nil)
	_ PostService        = (*service.Posts)(nil)
)

// NewServices groups the concrete services for the HTTP server.
func NewServices(
	auth *service.Auth,
	users *service.Users,
	projects *service.Projects,
	joinRequests *service.JoinRequests,
	tags *service.Tags,
	categories *service.Categories,
	comments *service.Comments,
	posts *service.Posts,
) Services {
	return Services{
		Auth:         auth,
		Users:        users,
		Projects:     projects,
		JoinRequests: joinRequests,
		Tags:         tags,
		Categories:   categories,
		Comments:     comments,
		Posts:        posts,
	}
}
