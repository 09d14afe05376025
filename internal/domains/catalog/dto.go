package catalog

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateAuthorRequest - POST /v1/authors
type CreateAuthorRequest struct {
	Name string `json:"name"`
}

func (r CreateAuthorRequest) Validate() error {
	return requestError(entityAuthor, validation.ValidateStruct(&r,
		validation.Field(&r.Name, authorNameRules...),
	))
}

// CreateMagazineRequest - POST /v1/magazines
type CreateMagazineRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (r CreateMagazineRequest) Validate() error {
	return requestError(entityMagazine, validation.ValidateStruct(&r,
		validation.Field(&r.Name, magazineNameRules...),
		validation.Field(&r.Category, categoryRules...),
	))
}

// UpdateMagazineRequest - PATCH /v1/magazines/:id
// Absent fields keep their value.
type UpdateMagazineRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (r UpdateMagazineRequest) Validate() error {
	return requestError(entityMagazine, validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.RuneLength(MagazineNameMinLen, MagazineNameMaxLen)),
		validation.Field(&r.Category, validation.NilOrNotEmpty),
	))
}

// CreateArticleRequest - POST /v1/articles
type CreateArticleRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   int64  `json:"author_id"`
	MagazineID int64  `json:"magazine_id"`
}

func (r CreateArticleRequest) Validate() error {
	return requestError(entityArticle, validation.ValidateStruct(&r,
		validation.Field(&r.Title, titleRules...),
		validation.Field(&r.Content, contentRules...),
		validation.Field(&r.AuthorID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.MagazineID, validation.Required, validation.Min(int64(1))),
	))
}

// UpdateArticleRequest - PATCH /v1/articles/:id
// Only content can change. The other fields exist so that attempts to
// change them are reported instead of ignored.
type UpdateArticleRequest struct {
	Content    *string `json:"content,omitempty"`
	Title      *string `json:"title,omitempty"`
	AuthorID   *int64  `json:"author_id,omitempty"`
	MagazineID *int64  `json:"magazine_id,omitempty"`
}

// Immutable returns an ImmutableFieldError for the first construction-time
// field present in the request.
func (r UpdateArticleRequest) Immutable() error {
	switch {
	case r.Title != nil:
		return NewImmutableFieldError(entityArticle, "title")
	case r.AuthorID != nil:
		return NewImmutableFieldError(entityArticle, "author_id")
	case r.MagazineID != nil:
		return NewImmutableFieldError(entityArticle, "magazine_id")
	}
	return nil
}

func (r UpdateArticleRequest) Validate() error {
	return requestError(entityArticle, validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.RuneLength(ContentMinLen, 0)),
	))
}

// requestError turns ozzo's per-field errors into a range ValidationError
// for the first failing field.
func requestError(entity string, err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return newRangeError(entity, keys[0], fields[keys[0]])
}

type AuthorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type MagazineResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ArticleResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorID   int64  `json:"author_id"`
	MagazineID int64  `json:"magazine_id"`
}

// ArticleTitlesResponse - GET /v1/magazines/:id/article-titles
type ArticleTitlesResponse struct {
	MagazineID int64    `json:"magazine_id"`
	Titles     []string `json:"titles"`
}

func (a *Author) ToResponse() AuthorResponse {
	return AuthorResponse{ID: a.id, Name: a.name}
}

func (m *Magazine) ToResponse() MagazineResponse {
	return MagazineResponse{ID: m.id, Name: m.name, Category: m.category}
}

func (a *Article) ToResponse() ArticleResponse {
	return ArticleResponse{
		ID:         a.id,
		Title:      a.title,
		Content:    a.content,
		AuthorID:   a.authorID,
		MagazineID: a.magazineID,
	}
}

func AuthorResponses(authors []*Author) []AuthorResponse {
	out := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, a.ToResponse())
	}
	return out
}

func MagazineResponses(mags []*Magazine) []MagazineResponse {
	out := make([]MagazineResponse, 0, len(mags))
	for _, m := range mags {
		out = append(out, m.ToResponse())
	}
	return out
}

func ArticleResponses(articles []*Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ToResponse())
	}
	return out
}
