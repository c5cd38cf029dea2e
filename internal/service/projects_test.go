package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

func projectIDs(projects []models.Project) []uint64 {
	res := make([]uint64, 0, len(projects))
	for _, p := range projects {
		res = append(res, p.ID)
	}
	return res
}

func TestProjects_CreateMakesCreatorMemberAndAdmin(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	_, err := e.tags.Create(testCtx, alice, TagInput{Name: "go"})
	require.NoError(t, err)

	p, err := e.projects.Create(testCtx, alice, ProjectCreate{
		Title:    "P1",
		Subtitle: "first",
		Tags:     []string{"go", "go"},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{alice.ID}, userIDs(p.Members))
	assert.Equal(t, []uint64{alice.ID}, userIDs(p.Admins))
	require.Len(t, p.Tags, 1)
	assert.Equal(t, "go", p.Tags[0].Name)

	t.Run("anonymous", func(t *testing.T) {
		_, err := e.projects.Create(testCtx, nil, ProjectCreate{Title: "P2"})
		assertKind(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("unknown tag rolls back", func(t *testing.T) {
		_, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "P3", Tags: []string{"go", "rust"}})
		assertFieldError(t, err, "tags", "One or more of your chosen tags do not exist.")

		var count int64
		require.NoError(t, e.db.Model(&models.Project{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := uint64(42)
		_, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "P4", Category: &missing})
		assertFieldError(t, err, "category", "No category exists with this id.")
	})
}

func TestProjects_UpdateByNonAdminIsDenied(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	carol := e.register(t, "carol")
	p1 := e.project(t, alice, "P1")

	_, err := e.projects.Update(testCtx, carol, p1.ID, ProjectUpdate{Title: strPtr("hijacked")})
	assertKind(t, err, apperr.ErrForbidden)

	detail, err := e.projects.Get(testCtx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "P1", detail.Project.Title)
	assert.Equal(t, []uint64{alice.ID}, userIDs(detail.Project.Members))
}

func TestProjects_Update(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	admin := e.staff(t, "admin")
	p1 := e.project(t, alice, "P1")
	category, err := e.categories.Create(testCtx, admin, CategoryInput{Name: "science"})
	require.NoError(t, err)

	p, err := e.projects.Update(testCtx, alice, p1.ID, ProjectUpdate{
		Title:    strPtr("P1 renamed"),
		Category: &category.ID,
		Members:  []string{"bob", "carol"},
		Admins:   []string{"bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "P1 renamed", p.Title)
	require.NotNil(t, p.Category)
	assert.Equal(t, "science", p.Category.Name)
	assert.ElementsMatch(t, []uint64{alice.ID, bob.ID, carol.ID}, userIDs(p.Members))
	assert.ElementsMatch(t, []uint64{alice.ID, bob.ID}, userIDs(p.Admins))

	// adding again is idempotent
	p, err = e.projects.Update(testCtx, bob, p1.ID, ProjectUpdate{Members: []string{"carol"}})
	require.NoError(t, err)
	assert.Len(t, p.Members, 3)

	_, err = e.projects.Update(testCtx, alice, p1.ID, ProjectUpdate{Members: []string{"dave"}})
	assertFieldError(t, err, "members", "One or more users with the given usernames do not exist.")

	// the singular admin key adds admins too
	p, err = e.projects.Update(testCtx, alice, p1.ID, ProjectUpdate{Admin: []string{"carol", "bob"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{alice.ID, bob.ID, carol.ID}, userIDs(p.Admins))

	_, err = e.projects.Update(testCtx, alice, p1.ID, ProjectUpdate{Admin: []string{"dave"}})
	assertFieldError(t, err, "admin", "One or more users with the given usernames do not exist.")

	// staff may write any project
	p, err = e.projects.Update(testCtx, admin, p1.ID, ProjectUpdate{Subtitle: strPtr("curated")})
	require.NoError(t, err)
	assert.Equal(t, "curated", p.Subtitle)
}

func TestProjects_List(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	admin := e.staff(t, "admin")
	_, err := e.tags.Create(testCtx, alice, TagInput{Name: "go"})
	require.NoError(t, err)
	category, err := e.categories.Create(testCtx, admin, CategoryInput{Name: "science"})
	require.NoError(t, err)

	p1, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "Gopher robots", Tags: []string{"go"}})
	require.NoError(t, err)
	p2, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "Telescope", Category: &category.ID})
	require.NoError(t, err)
	p3 := e.project(t, bob, "Garden")

	_, err = e.graph.HeartProject(testCtx, bob, p2.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query ProjectQuery
		want  []uint64
	}{
		{"all", ProjectQuery{}, []uint64{p1.ID, p2.ID, p3.ID}},
		{"by tag", ProjectQuery{Tag: "go"}, []uint64{p1.ID}},
		{"by category", ProjectQuery{Category: category.ID}, []uint64{p2.ID}},
		{"search", ProjectQuery{Search: "gard"}, []uint64{p3.ID}},
		{"most hearted", ProjectQuery{Sort: "-hearts"}, []uint64{p2.ID, p1.ID, p3.ID}},
		{"paged", ProjectQuery{Paging: Paging{Page: 2, PerPage: 1}}, []uint64{p2.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, err := e.projects.List(testCtx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, projectIDs(projects))
		})
	}

	projects, err := e.projects.List(testCtx, ProjectQuery{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Tags, 1)
}

func TestProjects_GetAndDelete(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p1 := e.project(t, alice, "P1")

	_, err := e.comments.Create(testCtx, bob, CommentCreate{Project: p1.ID, Content: "nice"})
	require.NoError(t, err)
	_, err = e.posts.Create(testCtx, alice, PostCreate{Project: p1.ID, Content: "update", Private: true})
	require.NoError(t, err)
	_, err = e.joins.Request(testCtx, bob, p1.ID, JoinRequestCreate{Message: "hi"})
	require.NoError(t, err)
	_, err = e.projects.ToggleHeart(testCtx, bob, p1.ID)
	require.NoError(t, err)

	detail, err := e.projects.Get(testCtx, p1.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
	require.Len(t, detail.Posts, 1)
	assert.Equal(t, []uint64{alice.ID}, userIDs(detail.Posts[0].Project.Admins))
	assert.Len(t, detail.JoinRequests, 1)
	assert.Equal(t, []uint64{bob.ID}, userIDs(detail.Hearters))
	assert.EqualValues(t, 1, detail.Project.Hearts)

	err = e.projects.Delete(testCtx, bob, p1.ID)
	assertKind(t, err, apperr.ErrForbidden)

	require.NoError(t, e.projects.Delete(testCtx, alice, p1.ID))
	_, err = e.projects.Get(testCtx, p1.ID)
	assertKind(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, e.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProjects_Heart(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p1 := e.project(t, alice, "P1")

	res, err := e.projects.Heart(testCtx, bob, ProjectHeartInput{Project: p1.ID, Heart: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, res.Hearted)
	assert.EqualValues(t, 1, res.Project.Hearts)
	assert.Equal(t, bob.ID, res.User.ID)

	_, err = e.projects.Heart(testCtx, bob, ProjectHeartInput{Project: p1.ID, Heart: boolPtr(true)})
	assertKind(t, err, apperr.ErrConflict)

	res, err = e.projects.Heart(testCtx, bob, ProjectHeartInput{Project: p1.ID, Heart: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, res.Hearted)
	assert.EqualValues(t, 0, res.Project.Hearts)

	_, err = e.projects.Heart(testCtx, nil, ProjectHeartInput{Project: p1.ID})
	assertKind(t, err, apperr.ErrUnauthenticated)
}

func TestProjects_Roles(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	p1 := e.project(t, alice, "P1")

	p, err := e.projects.AddMember(testCtx, alice, p1.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, p.Members, 2)

	p, err = e.projects.AddAdmin(testCtx, alice, p1.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, p.Admins, 2)

	p, err = e.projects.RemoveAdmin(testCtx, bob, p1.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, userIDs(p.Admins))

	_, err = e.projects.RemoveMember(testCtx, alice, p1.ID, bob.ID)
	assertKind(t, err, apperr.ErrForbidden)
}
