package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/media"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

var testCtx = context.Background()

type env struct {
	db         *gorm.DB
	cfg        *config.Config
	graph      *graph.Graph
	auth       *Auth
	users      *Users
	projects   *Projects
	tags       *Tags
	categories *Categories
	comments   *Comments
	posts      *Posts
	joins      *JoinRequests
}

func newEnv(t *testing.T) *env {
	conn := dbtest.New(t)
	l := zap.NewNop().Sugar()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTTTL:     time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	store, err := media.NewLocal(t.TempDir(), l)
	require.NoError(t, err)

	g := graph.NewGraph(conn, l)
	return &env{
		db:         conn,
		cfg:        cfg,
		graph:      g,
		auth:       NewAuth(conn, cfg, l),
		users:      NewUsers(conn, g, store, cfg, l),
		projects:   NewProjects(conn, g, l),
		tags:       NewTags(conn, l),
		categories: NewCategories(conn, l),
		comments:   NewComments(conn, l),
		posts:      NewPosts(conn, l),
		joins:      NewJoinRequests(g, l),
	}
}

func (e *env) register(t *testing.T, username string) *models.User {
	u, err := e.users.Register(testCtx, nil, UserCreate{
		Username: username,
		Email:    username + "@thinkspace.io",
		Password: "secret-" + username,
	})
	require.NoError(t, err)
	return u
}

func (e *env) staff(t *testing.T, username string) *models.User {
	u := e.register(t, username)
	require.NoError(t, e.db.Model(u).Update("site_admin", true).Error)
	u.SiteAdmin = true
	return u
}

func (e *env) project(t *testing.T, actor *models.User, title string) *models.Project {
	p, err := e.projects.Create(testCtx, actor, ProjectCreate{Title: title})
	require.NoError(t, err)
	return p
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "got %v", err)
}

func assertFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Fields[field], message)
}

func userIDs(users []models.User) []uint64 {
	res := make([]uint64, 0, len(users))
	for _, u := range users {
		res = append(res, u.ID)
	}
	return res
}

func TestPaging_limitOffset(t *testing.T) {
	tests := []struct {
		name   string
		page   Paging
		limit  uint64
		offset uint64
	}{
		{"defaults", Paging{}, DefaultPerPage, 0},
		{"third page", Paging{Page: 3, PerPage: 10}, 10, 20},
		{"clamped", Paging{Page: 1, PerPage: 500}, MaxPerPage, 0},
		{"huge page", Paging{Page: math.MaxUint64, PerPage: 100}, 100, (MaxPage - 1) * 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.page.limitOffset()
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
