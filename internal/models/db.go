package models

import (
	"time"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Links struct {
		Github   string
		Linkedin string
		Facebook string
		Twitter  string
		Website  string
	}

	User struct {
		GormForkedModel
		Username    string `gorm:"size:80;uniqueIndex;not null"`
		Email       string `gorm:"size:120;uniqueIndex;not null"`
		Password    string `gorm:"not null"`
		FirstName   string
		LastName    string
		Image       string
		ImageKey    string
		Description string
		Links       Links `gorm:"embedded;embeddedPrefix:link_"`
		Hearts      int64 `gorm:"not null;default:0"`
		SiteAdmin   bool  `gorm:"not null;default:false"`
		SiteCurator bool  `gorm:"not null;default:false"`
		APIWrite    bool  `gorm:"not null;default:false"`
	}

	Project struct {
		GormForkedModel
		Title       string `gorm:"not null"`
		Subtitle    string
		Description string
		Hearts      int64 `gorm:"not null;default:0"`
		CategoryID  *uint64
		Category    *Category
		Tags        []Tag  `gorm:"many2many:project_tags;"`
		Members     []User `gorm:"many2many:project_members;"`
		Admins      []User `gorm:"many2many:project_admins;"`
	}

	Tag struct {
		GormForkedModel
		Name     string    `gorm:"uniqueIndex;not null"`
		Projects []Project `gorm:"many2many:project_tags;"`
	}

	Category struct {
		GormForkedModel
		Name     string `gorm:"uniqueIndex;not null"`
		Projects []Project
	}

	Comment struct {
		GormForkedModel
		Content   string `gorm:"not null"`
		Anonymous bool   `gorm:"not null;default:false"`
		UserID    uint64 `gorm:"not null;index"`
		User      User
		ProjectID uint64 `gorm:"not null;index"`
		Project   Project
	}

	Post struct {
		GormForkedModel
		Content   string `gorm:"not null"`
		Private   bool   `gorm:"not null;default:false"`
		UserID    uint64 `gorm:"not null;index"`
		User      User
		ProjectID uint64 `gorm:"not null;index"`
		Project   Project
	}

	JoinRequest struct {
		GormForkedModel
		Message   string
		UserID    uint64 `gorm:"not null;uniqueIndex:uidx_join_request_user_project"`
		User      User
		ProjectID uint64 `gorm:"not null;uniqueIndex:uidx_join_request_user_project"`
		Project   Project
	}

	// UserHeart is a directed edge: HearterID hearted HearteeID.
	UserHeart struct {
		HearterID uint64 `gorm:"primaryKey"`
		HearteeID uint64 `gorm:"primaryKey;index"`
		CreatedAt time.Time
	}

	ProjectHeart struct {
		UserID    uint64 `gorm:"primaryKey"`
		ProjectID uint64 `gorm:"primaryKey;index"`
		CreatedAt time.Time
	}

	// ProjectMember and ProjectAdmin are rows of the join tables behind
	// Project.Members and Project.Admins.
	ProjectMember struct {
		ProjectID uint64 `gorm:"primaryKey"`
		UserID    uint64 `gorm:"primaryKey"`
	}

	ProjectAdmin struct {
		ProjectID uint64 `gorm:"primaryKey"`
		UserID    uint64 `gorm:"primaryKey"`
	}
)

// OwnerID returns the owning user's id; 0 for a nil receiver, which matches no user.
func (c *Comment) OwnerID() uint64 {
	if c == nil {
		return 0
	}
	return c.UserID
}

func (j *JoinRequest) OwnerID() uint64 {
	if j == nil {
		return 0
	}
	return j.UserID
}

func (p *Post) OwnerID() uint64 {
	if p == nil {
		return 0
	}
	return p.UserID
}

// IsStaff reports site-wide elevated privilege. A nil user is anonymous and never staff.
func (u *User) IsStaff() bool {
	if u == nil {
		return false
	}
	return u.SiteAdmin || u.SiteCurator || u.APIWrite
}

// All lists every model for auto-migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&Project{},
		&Comment{},
		&Post{},
		&JoinRequest{},
		&UserHeart{},
		&ProjectHeart{},
	}
}
