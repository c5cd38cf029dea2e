package service

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxPage keeps the offset far away from overflowing.
	MaxPage        = 1 << 31
)

const (
	msgNoUserID       = "No user exists with this id."
	msgNoUsername     = "No user exists with this username."
	msgNoProjectID    = "No project exists with this id."
	msgNoCategoryID   = "No category exists with this id."
	msgTagsMissing    = "One or more of your chosen tags do not exist."
	msgUsersMissing   = "One or more users with the given usernames do not exist."
	msgUsernameTaken  = "A user already exists with this username."
	msgEmailTaken     = "A user already exists with this email address."
	msgNotAuthed      = "You were not successfully authenticated."
	msgDenyProject    = "You do not have permission to modify this project."
	msgDenyBasic      = "You do not have permission to modify this user's basic properties."
	msgDenyProtected  = "You do not have permission to modify this user's protected properties."
	msgDenyDeleteUser = "You do not have permission to delete this user."
)

// Paging is the pagination part of list queries. Zero values fall back to the defaults.
type Paging struct {
	Page    uint64 `query:"page" validate:"omitempty,min=1,max=2147483648"`
	PerPage uint64 `query:"per_page" validate:"omitempty,min=1,max=100"`
}

func (p Paging) limitOffset() (uint64, uint64) {
	page, perPage := p.Page, p.PerPage
	if page == 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return perPage, (page - 1) * perPage
}

func paginate(b squirrel.SelectBuilder, p Paging) squirrel.SelectBuilder {
	limit, offset := p.limitOffset()
	return b.Limit(limit).Offset(offset)
}

// orderBy maps a public sort key ("-hearts") onto a column ordering, with id as the
// tie breaker so pages are stable.
func orderBy(b squirrel.SelectBuilder, alias, sort string) squirrel.SelectBuilder {
	if sort == "" {
		return b.OrderBy(alias + ".id")
	}
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = strings.TrimPrefix(sort, "-")
	}
	return b.OrderBy(alias+"."+sort+" "+dir, alias+".id")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// search matches term case-insensitively and literally against any of the columns.
func search(term string, columns ...string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.Expr("LOWER("+c+`) LIKE ? ESCAPE '\'`, pattern))
	}
	return or
}

func notFound(err error, field, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(field, message)
	}
	return errors.Wrap(err, "load "+field)
}

// saveFailed classifies a failed insert or update. Already classified errors pass through.
func saveFailed(err error) error {
	var appErr *apperr.Error
	var valErr *apperr.ValidationError
	if errors.As(err, &appErr) || errors.As(err, &valErr) {
		return err
	}
	return apperr.Persistence(errors.Cause(err))
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	res := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}
