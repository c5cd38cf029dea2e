package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestUsers_Register(t *testing.T) {
	e := newEnv(t)

	alice := e.register(t, "alice")
	assert.NotZero(t, alice.ID)
	assert.NotEqual(t, "secret-alice", alice.Password)
	assert.NoError(t, bcryptCheck(alice.Password, "secret-alice"))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := e.users.Register(testCtx, nil, UserCreate{
			Username: "alice",
			Email:    "other@thinkspace.io",
			Password: "another",
		})
		assertKind(t, err, apperr.ErrValidation)
		assertFieldError(t, err, "username", "A user already exists with this username.")

		stored := models.User{}
		require.NoError(t, e.db.First(&stored, alice.ID).Error)
		assert.Equal(t, "alice@thinkspace.io", stored.Email)
		assert.Equal(t, alice.Password, stored.Password)

		var count int64
		require.NoError(t, e.db.Model(&models.User{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := e.users.Register(testCtx, nil, UserCreate{
			Username: "alice2",
			Email:    "alice@thinkspace.io",
			Password: "another",
		})
		assertFieldError(t, err, "email", "A user already exists with this email address.")
	})
}

func TestUsers_List(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")

	_, err := e.graph.HeartUser(testCtx, alice, bob.ID)
	require.NoError(t, err)
	_, err = e.graph.HeartUser(testCtx, carol, bob.ID)
	require.NoError(t, err)
	_, err = e.graph.HeartUser(testCtx, alice, carol.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query UserQuery
		want  []uint64
	}{
		{"all by id", UserQuery{}, []uint64{alice.ID, bob.ID, carol.ID}},
		{"most hearted first", UserQuery{Sort: "-hearts"}, []uint64{bob.ID, carol.ID, alice.ID}},
		{"search", UserQuery{Search: "AR"}, []uint64{carol.ID}},
		{"username filter", UserQuery{Username: "bob"}, []uint64{bob.ID}},
		{"second page", UserQuery{Paging: Paging{Page: 2, PerPage: 2}}, []uint64{carol.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := e.users.List(testCtx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, userIDs(users))
		})
	}
}

func TestUsers_ListSearchIsLiteral(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	underscored := e.register(t, "bob_smith")
	percent := e.register(t, "carol")
	require.NoError(t, e.db.Model(percent).Update("first_name", "100%").Error)

	tests := []struct {
		search string
		want   []uint64
	}{
		{"_", []uint64{underscored.ID}},
		{"%", []uint64{percent.ID}},
		{"b_s", []uint64{underscored.ID}},
		{"b%s", nil},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			users, err := e.users.List(testCtx, UserQuery{Search: tt.search})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, userIDs(users))
		})
	}
}

func TestUsers_Get(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p1 := e.project(t, alice, "P1")

	_, err := e.graph.HeartUser(testCtx, bob, alice.ID)
	require.NoError(t, err)
	_, err = e.graph.HeartProject(testCtx, alice, p1.ID)
	require.NoError(t, err)
	_, err = e.graph.RequestJoin(testCtx, bob, p1.ID, "hi")
	require.NoError(t, err)

	detail, err := e.users.Get(testCtx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.User.Hearts)
	assert.Equal(t, []uint64{bob.ID}, userIDs(detail.Hearters))
	assert.Empty(t, detail.Heartees)
	require.Len(t, detail.HeartedProjects, 1)
	require.Len(t, detail.MemberProjects, 1)
	require.Len(t, detail.AdminProjects, 1)

	bobDetail, err := e.users.Get(testCtx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobDetail.JoinRequests, 1)
	assert.Equal(t, "P1", bobDetail.JoinRequests[0].Project.Title)

	_, err = e.users.Get(testCtx, 999)
	assertKind(t, err, apperr.ErrNotFound)
}

func TestUsers_Update(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	admin := e.staff(t, "admin")

	t.Run("self updates basic fields", func(t *testing.T) {
		u, err := e.users.Update(testCtx, alice, alice.ID, UserUpdate{
			FirstName: strPtr("Alice"),
			Github:    strPtr("https://github.com/alice"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", u.FirstName)
		assert.Equal(t, "https://github.com/alice", u.Links.Github)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := e.users.Update(testCtx, bob, alice.ID, UserUpdate{FirstName: strPtr("Mallory")})
		assertKind(t, err, apperr.ErrForbidden)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := e.users.Update(testCtx, nil, alice.ID, UserUpdate{FirstName: strPtr("Mallory")})
		assertKind(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("self cannot grant roles", func(t *testing.T) {
		_, err := e.users.Update(testCtx, alice, alice.ID, UserUpdate{SiteAdmin: boolPtr(true)})
		assertKind(t, err, apperr.ErrForbidden)

		stored := models.User{}
		require.NoError(t, e.db.First(&stored, alice.ID).Error)
		assert.False(t, stored.SiteAdmin)
	})

	t.Run("staff grants roles", func(t *testing.T) {
		u, err := e.users.Update(testCtx, admin, bob.ID, UserUpdate{SiteCurator: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, u.SiteCurator)
	})

	t.Run("email must stay unique", func(t *testing.T) {
		_, err := e.users.Update(testCtx, bob, bob.ID, UserUpdate{Email: strPtr("alice@thinkspace.io")})
		assertFieldError(t, err, "email", "A user already exists with this email address.")
	})

	t.Run("password is rehashed", func(t *testing.T) {
		_, err := e.users.Update(testCtx, bob, bob.ID, UserUpdate{Password: strPtr("new-password")})
		require.NoError(t, err)
		_, err = e.auth.BasicAuth(testCtx, "bob", "new-password")
		assert.NoError(t, err)
	})
}

func TestUsers_Delete(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p1 := e.project(t, alice, "P1")

	_, err := e.graph.HeartUser(testCtx, bob, alice.ID)
	require.NoError(t, err)
	_, err = e.graph.HeartProject(testCtx, bob, p1.ID)
	require.NoError(t, err)

	err = e.users.Delete(testCtx, alice, bob.ID)
	assertKind(t, err, apperr.ErrForbidden)

	require.NoError(t, e.users.Delete(testCtx, bob, bob.ID))

	detail, err := e.users.Get(testCtx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, detail.User.Hearts)
	assert.Empty(t, detail.Hearters)

	project, err := e.projects.Get(testCtx, p1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, project.Project.Hearts)

	_, err = e.users.Get(testCtx, bob.ID)
	assertKind(t, err, apperr.ErrNotFound)
}

func TestUsers_Heart(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	// bob hearts alice, then alice hearts bob
	res, err := e.users.Heart(testCtx, bob, UserHeartInput{Heartee: "alice", Heart: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, res.Hearted)
	assert.EqualValues(t, 1, res.Heartee.Hearts)
	assert.Equal(t, bob.ID, res.Hearter.ID)

	res, err = e.users.ToggleHeart(testCtx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Hearted)
	assert.EqualValues(t, 1, res.Heartee.Hearts)

	_, err = e.users.Heart(testCtx, bob, UserHeartInput{Heartee: "alice", Heart: boolPtr(true)})
	assertKind(t, err, apperr.ErrConflict)

	_, err = e.users.Heart(testCtx, bob, UserHeartInput{Heartee: "nobody"})
	assertFieldError(t, err, "heartee", "No user exists with this username.")

	_, err = e.users.Heart(testCtx, alice, UserHeartInput{Heartee: "alice"})
	assertKind(t, err, apperr.ErrForbidden)

	_, err = e.users.Heart(testCtx, nil, UserHeartInput{Heartee: "alice"})
	assertKind(t, err, apperr.ErrUnauthenticated)

	// toggling back restores the original state
	res, err = e.users.Heart(testCtx, bob, UserHeartInput{Heartee: "alice"})
	require.NoError(t, err)
	assert.False(t, res.Hearted)
	assert.EqualValues(t, 0, res.Heartee.Hearts)
}

func TestUsers_SetImage(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	u, err := e.users.SetImage(testCtx, alice, alice.ID, "Me.PNG", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Image, "/media/users/"), u.Image)
	assert.True(t, strings.HasSuffix(u.Image, ".png"), u.Image)

	stored := models.User{}
	require.NoError(t, e.db.First(&stored, alice.ID).Error)
	assert.Equal(t, u.Image, stored.Image)

	_, err = e.users.SetImage(testCtx, bob, alice.ID, "x.png", "image/png", strings.NewReader("png"))
	assertKind(t, err, apperr.ErrForbidden)

	_, err = e.users.SetImage(testCtx, alice, alice.ID, "x.txt", "text/plain", strings.NewReader("txt"))
	assertFieldError(t, err, "image", "The uploaded file must be an image.")
}
