package models

import (
	"time"
)

type (
	LinksResp struct {
		Github   string `json:"github,omitempty"`
		Linkedin string `json:"linkedin,omitempty"`
		Facebook string `json:"facebook,omitempty"`
		Twitter  string `json:"twitter,omitempty"`
		Website  string `json:"website,omitempty"`
	}

	// UserResp never carries the password hash.
	UserResp struct {
		ID          uint64    `json:"id"`
		Username    string    `json:"username"`
		Email       string    `json:"email"`
		FirstName   string    `json:"first_name"`
		LastName    string    `json:"last_name"`
		Image       string    `json:"image,omitempty"`
		Description string    `json:"description"`
		Links       LinksResp `json:"links"`
		Hearts      int64     `json:"hearts"`
		SiteAdmin   bool      `json:"site_admin"`
		SiteCurator bool      `json:"site_curator"`
		APIWrite    bool      `json:"api_write"`
		DateJoined  time.Time `json:"date_joined"`
	}

	UserRef struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Image    string `json:"image,omitempty"`
	}

	ProjectRef struct {
		ID     uint64 `json:"id"`
		Title  string `json:"title"`
		Hearts int64  `json:"hearts"`
	}

	TagResp struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}

	CategoryResp struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}

	ProjectResp struct {
		ID          uint64        `json:"id"`
		Title       string        `json:"title"`
		Subtitle    string        `json:"subtitle"`
		Description string        `json:"description"`
		Hearts      int64         `json:"hearts"`
		CreatedAt   time.Time     `json:"created_at"`
		Category    *CategoryResp `json:"category"`
		Tags        []TagResp     `json:"tags"`
		Members     []UserRef     `json:"members,omitempty"`
		Admins      []UserRef     `json:"admins,omitempty"`
	}

	// CommentResp omits the author of anonymous comments.
	CommentResp struct {
		ID        uint64    `json:"id"`
		Content   string    `json:"content"`
		Anonymous bool      `json:"anonymous"`
		User      *UserRef  `json:"user,omitempty"`
		Project   uint64    `json:"project"`
		CreatedAt time.Time `json:"created_at"`
	}

	// PostResp omits the content of private posts the reader may not see.
	PostResp struct {
		ID        uint64    `json:"id"`
		Content   *string   `json:"content,omitempty"`
		Private   bool      `json:"private"`
		User      *UserRef  `json:"user,omitempty"`
		Project   uint64    `json:"project"`
		CreatedAt time.Time `json:"created_at"`
	}

	JoinRequestResp struct {
		ID        uint64      `json:"id"`
		Message   string      `json:"message,omitempty"`
		User      *UserRef    `json:"user,omitempty"`
		Project   *ProjectRef `json:"project,omitempty"`
		CreatedAt time.Time   `json:"created_at"`
	}
)

func NewUserResp(u *User) UserResp {
	return UserResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Image:       u.Image,
		Description: u.Description,
		Links: LinksResp{
			Github:   u.Links.Github,
			Linkedin: u.Links.Linkedin,
			Facebook: u.Links.Facebook,
			Twitter:  u.Links.Twitter,
			Website:  u.Links.Website,
		},
		Hearts:      u.Hearts,
		SiteAdmin:   u.SiteAdmin,
		SiteCurator: u.SiteCurator,
		APIWrite:    u.APIWrite,
		DateJoined:  u.CreatedAt,
	}
}

func NewUserResps(users []User) []UserResp {
	resp := make([]UserResp, len(users))
	for i := range users {
		resp[i] = NewUserResp(&users[i])
	}
	return resp
}

func NewUserRef(u *User) UserRef {
	return UserRef{
		ID:       u.ID,
		Username: u.Username,
		Image:    u.Image,
	}
}

func NewUserRefs(users []User) []UserRef {
	resp := make([]UserRef, len(users))
	for i := range users {
		resp[i] = NewUserRef(&users[i])
	}
	return resp
}

func NewProjectRefs(projects []Project) []ProjectRef {
	resp := make([]ProjectRef, len(projects))
	for i := range projects {
		resp[i] = ProjectRef{
			ID:     projects[i].ID,
			Title:  projects[i].Title,
			Hearts: projects[i].Hearts,
		}
	}
	return resp
}

func NewTagResp(t *Tag) TagResp {
	return TagResp{
		ID:   t.ID,
		Name: t.Name,
	}
}

func NewTagResps(tags []Tag) []TagResp {
	resp := make([]TagResp, len(tags))
	for i := range tags {
		resp[i] = NewTagResp(&tags[i])
	}
	return resp
}

func NewCategoryResp(c *Category) CategoryResp {
	return CategoryResp{
		ID:   c.ID,
		Name: c.Name,
	}
}

func NewCategoryResps(categories []Category) []CategoryResp {
	resp := make([]CategoryResp, len(categories))
	for i := range categories {
		resp[i] = NewCategoryResp(&categories[i])
	}
	return resp
}

func NewProjectResp(p *Project) ProjectResp {
	resp := ProjectResp{
		ID:          p.ID,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		Hearts:      p.Hearts,
		CreatedAt:   p.CreatedAt,
		Tags:        NewTagResps(p.Tags),
	}
	if p.Category != nil {
		c := NewCategoryResp(p.Category)
		resp.Category = &c
	}
	if p.Members != nil {
		resp.Members = NewUserRefs(p.Members)
	}
	if p.Admins != nil {
		resp.Admins = NewUserRefs(p.Admins)
	}
	return resp
}

func NewProjectResps(projects []Project) []ProjectResp {
	resp := make([]ProjectResp, len(projects))
	for i := range projects {
		resp[i] = NewProjectResp(&projects[i])
	}
	return resp
}

func NewCommentResp(c *Comment) CommentResp {
	resp := CommentResp{
		ID:        c.ID,
		Content:   c.Content,
		Anonymous: c.Anonymous,
		Project:   c.ProjectID,
		CreatedAt: c.CreatedAt,
	}
	if !c.Anonymous && c.User.ID != 0 {
		u := NewUserRef(&c.User)
		resp.User = &u
	}
	return resp
}

func NewCommentResps(comments []Comment) []CommentResp {
	resp := make([]CommentResp, len(comments))
	for i := range comments {
		resp[i] = NewCommentResp(&comments[i])
	}
	return resp
}

// NewPostResp includes the content only when readable is set.
func NewPostResp(p *Post, readable bool) PostResp {
	resp := PostResp{
		ID:        p.ID,
		Private:   p.Private,
		Project:   p.ProjectID,
		CreatedAt: p.CreatedAt,
	}
	if readable {
		content := p.Content
		resp.Content = &content
	}
	if p.User.ID != 0 {
		u := NewUserRef(&p.User)
		resp.User = &u
	}
	return resp
}

func NewJoinRequestResp(j *JoinRequest) JoinRequestResp {
	resp := JoinRequestResp{
		ID:        j.ID,
		Message:   j.Message,
		CreatedAt: j.CreatedAt,
	}
	if j.User.ID != 0 {
		u := NewUserRef(&j.User)
		resp.User = &u
	} else {
		resp.User = &UserRef{ID: j.UserID}
	}
	if j.Project.ID != 0 {
		resp.Project = &ProjectRef{ID: j.Project.ID, Title: j.Project.Title, Hearts: j.Project.Hearts}
	} else {
		resp.Project = &ProjectRef{ID: j.ProjectID}
	}
	return resp
}

func NewJoinRequestResps(requests []JoinRequest) []JoinRequestResp {
	resp := make([]JoinRequestResp, len(requests))
	for i := range requests {
		resp[i] = NewJoinRequestResp(&requests[i])
	}
	return resp
}
