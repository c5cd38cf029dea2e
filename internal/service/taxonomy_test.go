package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

func TestTags(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	admin := e.staff(t, "admin")

	goTag, err := e.tags.Create(testCtx, alice, TagInput{Name: " go "})
	require.NoError(t, err)
	assert.Equal(t, "go", goTag.Name)
	_, err = e.tags.Create(testCtx, alice, TagInput{Name: "golang"})
	require.NoError(t, err)
	_, err = e.tags.Create(testCtx, alice, TagInput{Name: "rust"})
	require.NoError(t, err)

	_, err = e.tags.Create(testCtx, alice, TagInput{Name: "go"})
	assertFieldError(t, err, "name", "A tag already exists with this name.")

	_, err = e.tags.Create(testCtx, nil, TagInput{Name: "zig"})
	assertKind(t, err, apperr.ErrUnauthenticated)

	found, err := e.tags.List(testCtx, "GO")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "go", found[0].Name)
	assert.Equal(t, "golang", found[1].Name)

	_, err = e.tags.Update(testCtx, alice, goTag.ID, TagInput{Name: "go-lang"})
	assertKind(t, err, apperr.ErrForbidden)

	renamed, err := e.tags.Update(testCtx, admin, goTag.ID, TagInput{Name: "gopher"})
	require.NoError(t, err)
	assert.Equal(t, "gopher", renamed.Name)

	p, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "P1", Tags: []string{"gopher"}})
	require.NoError(t, err)
	require.Len(t, p.Tags, 1)

	require.NoError(t, e.tags.Delete(testCtx, admin, goTag.ID))
	detail, err := e.projects.Get(testCtx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Project.Tags)

	err = e.tags.Delete(testCtx, admin, goTag.ID)
	assertKind(t, err, apperr.ErrNotFound)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	admin := e.staff(t, "admin")

	_, err := e.categories.Create(testCtx, alice, CategoryInput{Name: "science"})
	assertKind(t, err, apperr.ErrForbidden)

	science, err := e.categories.Create(testCtx, admin, CategoryInput{Name: "science"})
	require.NoError(t, err)
	_, err = e.categories.Create(testCtx, admin, CategoryInput{Name: "art"})
	require.NoError(t, err)

	_, err = e.categories.Create(testCtx, admin, CategoryInput{Name: "art"})
	assertFieldError(t, err, "name", "A category already exists with this name.")

	all, err := e.categories.List(testCtx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "art", all[0].Name)

	updated, err := e.categories.Update(testCtx, admin, science.ID, CategoryInput{Name: "sciences"})
	require.NoError(t, err)
	assert.Equal(t, "sciences", updated.Name)

	p, err := e.projects.Create(testCtx, alice, ProjectCreate{Title: "P1", Category: &science.ID})
	require.NoError(t, err)
	require.NotNil(t, p.CategoryID)

	require.NoError(t, e.categories.Delete(testCtx, admin, science.ID))
	stored := models.Project{}
	require.NoError(t, e.db.First(&stored, p.ID).Error)
	assert.Nil(t, stored.CategoryID)
}
