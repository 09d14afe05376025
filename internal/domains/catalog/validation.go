package catalog

import (
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field bounds, counted in runes.
const (
	AuthorNameMinLen   = 1
	MagazineNameMinLen = 2
	MagazineNameMaxLen = 16
	CategoryMinLen     = 1
	TitleMinLen        = 5
	TitleMaxLen        = 50
	ContentMinLen      = 1

	// ContributingThreshold is the article count an author must exceed
	// in a magazine to be a contributing author.
	ContributingThreshold = 2
)

// Identifiable is anything with a store-assigned id.
type Identifiable interface {
	ID() int64
}

// Named is anything with a display name.
type Named interface {
	Name() string
}

// Parent is what an Article needs from its author and magazine:
// an identity, a name, a live persisted row behind it and the session
// that loaded it.
type Parent interface {
	Identifiable
	Named
	IsPersisted() bool
	owner() *Session
}

var (
	_ Parent = (*Author)(nil)
	_ Parent = (*Magazine)(nil)
)

var (
	authorNameRules   = []validation.Rule{validation.Required, validation.RuneLength(AuthorNameMinLen, 0)}
	magazineNameRules = []validation.Rule{validation.Required, validation.RuneLength(MagazineNameMinLen, MagazineNameMaxLen)}
	categoryRules     = []validation.Rule{validation.Required, validation.RuneLength(CategoryMinLen, 0)}
	titleRules        = []validation.Rule{validation.Required, validation.RuneLength(TitleMinLen, TitleMaxLen)}
	contentRules      = []validation.Rule{validation.Required, validation.RuneLength(ContentMinLen, 0)}
)

// checkText rejects bytes that are not text as a type error and
// out-of-bounds lengths as a range error.
func checkText(entity, field, value string, rules []validation.Rule) error {
	if !utf8.ValidString(value) {
		return newTypeError(entity, field, "must be valid UTF-8 text")
	}
	if err := validation.Validate(value, rules...); err != nil {
		return newRangeError(entity, field, err)
	}
	return nil
}

func ValidateAuthorName(name string) error {
	return checkText(entityAuthor, "name", name, authorNameRules)
}

func ValidateMagazineName(name string) error {
	return checkText(entityMagazine, "name", name, magazineNameRules)
}

func ValidateCategory(category string) error {
	return checkText(entityMagazine, "category", category, categoryRules)
}

func ValidateTitle(title string) error {
	return checkText(entityArticle, "title", title, titleRules)
}

func ValidateContent(content string) error {
	return checkText(entityArticle, "content", content, contentRules)
}

// validateParent checks that p is a live, identified entity of this session.
func validateParent(s *Session, field string, p Parent) error {
	if !p.IsPersisted() {
		return newTypeError(entityArticle, field, "must be a saved entity")
	}
	if p.owner() != s {
		return newTypeError(entityArticle, field, "belongs to another session")
	}
	if p.Name() == "" {
		return newTypeError(entityArticle, field, "must be a named entity")
	}
	return nil
}
