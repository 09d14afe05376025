package catalog

import (
	"context"
)

// Service exposes catalog operations to transports. Every call is its own
// unit of work: entities never outlive the call, so results are returned
// as response values.
type Service interface {
	ListAuthors(ctx context.Context) ([]AuthorResponse, error)
	GetAuthor(ctx context.Context, id int64) (*AuthorResponse, error)
	CreateAuthor(ctx context.Context, req *CreateAuthorRequest) (*AuthorResponse, error)
	// DeleteAuthor fails with a foreign key StorageError while the author has articles.
	DeleteAuthor(ctx context.Context, id int64) error
	AuthorArticles(ctx context.Context, id int64) ([]ArticleResponse, error)
	AuthorMagazines(ctx context.Context, id int64) ([]MagazineResponse, error)

	ListMagazines(ctx context.Context) ([]MagazineResponse, error)
	GetMagazine(ctx context.Context, id int64) (*MagazineResponse, error)
	CreateMagazine(ctx context.Context, req *CreateMagazineRequest) (*MagazineResponse, error)
	UpdateMagazine(ctx context.Context, id int64, req *UpdateMagazineRequest) (*MagazineResponse, error)
	DeleteMagazine(ctx context.Context, id int64) error
	MagazineArticles(ctx context.Context, id int64) ([]ArticleResponse, error)
	MagazineContributors(ctx context.Context, id int64) ([]AuthorResponse, error)
	// ContributingAuthors returns nil when no author has more than
	// ContributingThreshold articles in the magazine.
	ContributingAuthors(ctx context.Context, id int64) ([]AuthorResponse, error)
	// ArticleTitles reports ok=false when the magazine has no articles.
	ArticleTitles(ctx context.Context, id int64) (titles []string, ok bool, err error)

	ListArticles(ctx context.Context) ([]ArticleResponse, error)
	GetArticle(ctx context.Context, id int64) (*ArticleResponse, error)
	// CreateArticle rejects ids that do not name saved parents with a type
	// ValidationError.
	CreateArticle(ctx context.Context, req *CreateArticleRequest) (*ArticleResponse, error)
	// UpdateArticle changes content only. Any other field yields ImmutableFieldError.
	UpdateArticle(ctx context.Context, id int64, req *UpdateArticleRequest) (*ArticleResponse, error)
	DeleteArticle(ctx context.Context, id int64) error
	ArticleAuthor(ctx context.Context, id int64) (*AuthorResponse, error)
	ArticleMagazine(ctx context.Context, id int64) (*MagazineResponse, error)
}
