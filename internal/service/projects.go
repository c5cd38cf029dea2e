package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/graph"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/permission"
)

type (
	Projects struct {
		db     *gorm.DB
		graph  *graph.Graph
		logger *zap.SugaredLogger
	}

	ProjectCreate struct {
		Title       string   `json:"title" validate:"required,max=200"`
		Subtitle    string   `json:"subtitle" validate:"max=200"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		Category    *uint64  `json:"category"`
	}

	// ProjectUpdate lists every field a PUT may touch. Tags, Members and Admins are
	// added to the existing sets; nothing is removed. Admin is the singular key older
	// clients send and is merged into Admins.
	ProjectUpdate struct {
		Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
		Subtitle    *string  `json:"subtitle" validate:"omitempty,max=200"`
		Description *string  `json:"description"`
		Category    *uint64  `json:"category"`
		Tags        []string `json:"tags"`
		Members     []string `json:"members"`
		Admins      []string `json:"admins"`
		Admin       []string `json:"admin"`
	}

	ProjectQuery struct {
		Paging
		Search   string `query:"search"`
		Sort     string `query:"sort" validate:"omitempty,oneof=hearts -hearts created_at -created_at title -title"`
		Tag      string `query:"tag"`
		Category uint64 `query:"category"`
	}

	ProjectDetail struct {
		Project      *models.Project
		Hearters     []models.User
		Comments     []models.Comment
		Posts        []models.Post
		JoinRequests []models.JoinRequest
	}

	// ProjectHeartInput names the project by id. A nil Heart toggles.
	ProjectHeartInput struct {
		Project uint64 `json:"project" validate:"required"`
		Heart   *bool  `json:"heart"`
	}

	ProjectHeartResult struct {
		User    *models.User
		Project *models.Project
		Hearted bool
	}
)

func NewProjects(db *gorm.DB, g *graph.Graph, l *zap.SugaredLogger) *Projects {
	return &Projects{
		db:     db,
		graph:  g,
		logger: l,
	}
}

// Create stores the project and makes the actor its first member and admin in the
// same transaction.
func (s *Projects) Create(ctx context.Context, actor *models.User, in ProjectCreate) (*models.Project, error) {
	if !permission.CanCreateProject(actor) {
		return nil, apperr.Deny(actor, "You do not have permission to create a project.")
	}

	model := models.Project{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		CategoryID:  in.Category,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verr := &apperr.ValidationError{}
		tags, err := resolveTags(tx, in.Tags, verr)
		if err != nil {
			return err
		}
		if err := checkCategory(tx, in.Category, verr); err != nil {
			return err
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		if err := tx.Omit("Tags", "Members", "Admins", "Category").Create(&model).Error; err != nil {
			return saveFailed(err)
		}
		if err := appendTags(tx, &model, tags); err != nil {
			return err
		}
		if err := graph.InsertMembers(tx, model.ID, actor.ID); err != nil {
			return err
		}
		return graph.InsertAdmins(tx, model.ID, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("project created", "project", model.ID, "creator", actor.ID)
	return s.load(ctx, model.ID)
}

func (s *Projects) Get(ctx context.Context, id uint64) (*ProjectDetail, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := ProjectDetail{Project: project}

	if detail.Hearters, err = s.graph.ProjectHearters(ctx, id); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	detail.Comments = make([]models.Comment, 0)
	if err := db.Preload("User").Where("project_id = ?", id).Order("id").Find(&detail.Comments).Error; err != nil {
		return nil, errors.Wrap(err, "find comments")
	}
	detail.Posts = make([]models.Post, 0)
	if err := db.Preload("User").Where("project_id = ?", id).Order("id").Find(&detail.Posts).Error; err != nil {
		return nil, errors.Wrap(err, "find posts")
	}
	// posts are judged for visibility against their project's roles
	for i := range detail.Posts {
		detail.Posts[i].Project = *project
	}
	if detail.JoinRequests, err = s.JoinRequests(ctx, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Projects) JoinRequests(ctx context.Context, projectID uint64) ([]models.JoinRequest, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&models.Project{}, projectID).Error; err != nil {
		return nil, notFound(err, "id", msgNoProjectID)
	}
	requests := make([]models.JoinRequest, 0)
	res := s.db.WithContext(ctx).Preload("User").Where("project_id = ?", projectID).Order("id").Find(&requests)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find join requests")
	}
	return requests, nil
}

func (s *Projects) List(ctx context.Context, q ProjectQuery) ([]models.Project, error) {
	b := squirrel.Select("p.*").From("projects p")
	w := squirrel.And{}
	if q.Tag != "" {
		b = b.Join("project_tags pt ON pt.project_id = p.id").Join("tags t ON t.id = pt.tag_id")
		w = append(w, squirrel.Eq{"t.name": q.Tag})
	}
	if q.Category != 0 {
		w = append(w, squirrel.Eq{"p.category_id": q.Category})
	}
	if q.Search != "" {
		w = append(w, search(q.Search, "p.title", "p.subtitle", "p.description"))
	}
	b = paginate(orderBy(b.Where(w), "p", q.Sort), q.Paging)

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	projects := make([]models.Project, 0)
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	if len(projects) == 0 {
		return projects, nil
	}

	// the page is fixed by the query above; associations are loaded afterwards and
	// put back in page order
	ids := make([]uint64, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	loaded := make([]models.Project, 0, len(ids))
	if err := s.db.WithContext(ctx).Preload("Tags").Preload("Category").Where("id IN ?", ids).Find(&loaded).Error; err != nil {
		return nil, errors.Wrap(err, "load associations")
	}
	byID := make(map[uint64]models.Project, len(loaded))
	for _, p := range loaded {
		byID[p.ID] = p
	}
	for i := range projects {
		if p, ok := byID[projects[i].ID]; ok {
			projects[i] = p
		}
	}
	return projects, nil
}

func (s *Projects) Update(ctx context.Context, actor *models.User, id uint64, in ProjectUpdate) (*models.Project, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		if err := tx.Preload("Admins").First(&project, id).Error; err != nil {
			return notFound(err, "id", msgNoProjectID)
		}
		if !permission.CanWriteProject(actor, &project) {
			return apperr.Deny(actor, msgDenyProject)
		}

		verr := &apperr.ValidationError{}
		tags, err := resolveTags(tx, in.Tags, verr)
		if err != nil {
			return err
		}
		if err := checkCategory(tx, in.Category, verr); err != nil {
			return err
		}
		members, err := resolveUsernames(tx, "members", in.Members, verr)
		if err != nil {
			return err
		}
		admins, err := resolveUsernames(tx, "admins", in.Admins, verr)
		if err != nil {
			return err
		}
		legacyAdmins, err := resolveUsernames(tx, "admin", in.Admin, verr)
		if err != nil {
			return err
		}
		admins = append(admins, legacyAdmins...)
		if err := verr.OrNil(); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		setIf(updates, "title", in.Title)
		setIf(updates, "subtitle", in.Subtitle)
		setIf(updates, "description", in.Description)
		setIf(updates, "category_id", in.Category)
		if len(updates) != 0 {
			if err := tx.Model(&project).Omit("Tags", "Members", "Admins", "Category").Updates(updates).Error; err != nil {
				return saveFailed(err)
			}
		}

		if err := appendTags(tx, &project, tags); err != nil {
			return err
		}
		if err := graph.InsertMembers(tx, project.ID, members...); err != nil {
			return err
		}
		return graph.InsertAdmins(tx, project.ID, admins...)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Projects) Delete(ctx context.Context, actor *models.User, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := models.Project{}
		if err := tx.Preload("Admins").First(&project, id).Error; err != nil {
			return notFound(err, "id", msgNoProjectID)
		}
		if !permission.CanWriteProject(actor, &project) {
			return apperr.Deny(actor, msgDenyProject)
		}
		if err := graph.DetachProject(tx, id); err != nil {
			return err
		}
		return errors.Wrap(tx.Delete(&models.Project{}, id).Error, "delete project")
	})
	if err != nil {
		return err
	}
	s.logger.Infow("project deleted", "project", id, "actor", actor.ID)
	return nil
}

/////// roles

func (s *Projects) AddMember(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error) {
	if err := s.graph.AddMember(ctx, actor, projectID, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, projectID)
}

func (s *Projects) RemoveMember(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error) {
	if err := s.graph.RemoveMember(ctx, actor, projectID, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, projectID)
}

func (s *Projects) AddAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error) {
	if err := s.graph.AddAdmin(ctx, actor, projectID, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, projectID)
}

func (s *Projects) RemoveAdmin(ctx context.Context, actor *models.User, projectID, userID uint64) (*models.Project, error) {
	if err := s.graph.RemoveAdmin(ctx, actor, projectID, userID); err != nil {
		return nil, err
	}
	return s.load(ctx, projectID)
}

/////// hearts

func (s *Projects) Heart(ctx context.Context, actor *models.User, in ProjectHeartInput) (*ProjectHeartResult, error) {
	var (
		state *graph.HeartState
		err   error
	)
	switch {
	case in.Heart == nil:
		state, err = s.graph.ToggleProjectHeart(ctx, actor, in.Project)
	case *in.Heart:
		state, err = s.graph.HeartProject(ctx, actor, in.Project)
	default:
		state, err = s.graph.UnheartProject(ctx, actor, in.Project)
	}
	if err != nil {
		return nil, err
	}
	return s.heartResult(ctx, actor, in.Project, state)
}

func (s *Projects) ToggleHeart(ctx context.Context, actor *models.User, id uint64) (*ProjectHeartResult, error) {
	state, err := s.graph.ToggleProjectHeart(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.heartResult(ctx, actor, id, state)
}

func (s *Projects) heartResult(ctx context.Context, actor *models.User, projectID uint64, state *graph.HeartState) (*ProjectHeartResult, error) {
	project := models.Project{}
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		return nil, errors.Wrap(err, "reload project")
	}
	return &ProjectHeartResult{
		User:    actor,
		Project: &project,
		Hearted: state.Hearted,
	}, nil
}

func (s *Projects) load(ctx context.Context, id uint64) (*models.Project, error) {
	project := models.Project{}
	res := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags").
		Preload("Members").
		Preload("Admins").
		First(&project, id)
	if res.Error != nil {
		return nil, notFound(res.Error, "id", msgNoProjectID)
	}
	return &project, nil
}

func resolveTags(tx *gorm.DB, names []string, verr *apperr.ValidationError) ([]models.Tag, error) {
	names = uniqueStrings(names)
	if len(names) == 0 {
		return nil, nil
	}
	tags := make([]models.Tag, 0, len(names))
	if err := tx.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find tags")
	}
	if len(tags) != len(names) {
		verr.Add("tags", msgTagsMissing)
	}
	return tags, nil
}

func resolveUsernames(tx *gorm.DB, field string, usernames []string, verr *apperr.ValidationError) ([]uint64, error) {
	usernames = uniqueStrings(usernames)
	if len(usernames) == 0 {
		return nil, nil
	}
	var ids []uint64
	if err := tx.Model(&models.User{}).Where("username IN ?", usernames).Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	if len(ids) != len(usernames) {
		verr.Add(field, msgUsersMissing)
	}
	return ids, nil
}

func checkCategory(tx *gorm.DB, id *uint64, verr *apperr.ValidationError) error {
	if id == nil {
		return nil
	}
	found, err := exists(tx, &models.Category{}, "id = ?", *id)
	if err != nil {
		return err
	}
	if !found {
		verr.Add("category", msgNoCategoryID)
	}
	return nil
}

func appendTags(tx *gorm.DB, project *models.Project, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := tx.Model(project).Association("Tags").Append(tags); err != nil {
		return errors.Wrap(err, "append tags")
	}
	return nil
}
