package service

import (
	"context"

	"magazine-catalog/internal/domains/catalog"
)

// catalogService implements catalog.Service.
// Each call opens a fresh catalog.Session, so identity maps live exactly
// as long as one request.
type catalogService struct {
	store catalog.Store
	opts  []catalog.Option
}

// NewCatalogService builds the service over store. opts are applied to
// every session it opens (logger, row cache).
func NewCatalogService(store catalog.Store, opts ...catalog.Option) catalog.Service {
	return &catalogService{store: store, opts: opts}
}

func (s *catalogService) session() *catalog.Session {
	return catalog.NewSession(s.store, s.opts...)
}

// ---- authors ----

func (s *catalogService) ListAuthors(ctx context.Context) ([]catalog.AuthorResponse, error) {
	authors, err := s.session().Authors(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.AuthorResponses(authors), nil
}

func (s *catalogService) GetAuthor(ctx context.Context, id int64) (*catalog.AuthorResponse, error) {
	a, err := s.session().FindAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := a.ToResponse()
	return &resp, nil
}

func (s *catalogService) CreateAuthor(ctx context.Context, req *catalog.CreateAuthorRequest) (*catalog.AuthorResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err := s.session().CreateAuthor(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	resp := a.ToResponse()
	return &resp, nil
}

func (s *catalogService) DeleteAuthor(ctx context.Context, id int64) error {
	a, err := s.session().FindAuthor(ctx, id)
	if err != nil {
		return err
	}
	return a.Delete(ctx)
}

func (s *catalogService) AuthorArticles(ctx context.Context, id int64) ([]catalog.ArticleResponse, error) {
	a, err := s.session().FindAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := a.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ArticleResponses(articles), nil
}

func (s *catalogService) AuthorMagazines(ctx context.Context, id int64) ([]catalog.MagazineResponse, error) {
	a, err := s.session().FindAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	mags, err := a.Magazines(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.MagazineResponses(mags), nil
}

// ---- magazines ----

func (s *catalogService) ListMagazines(ctx context.Context) ([]catalog.MagazineResponse, error) {
	mags, err := s.session().Magazines(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.MagazineResponses(mags), nil
}

func (s *catalogService) GetMagazine(ctx context.Context, id int64) (*catalog.MagazineResponse, error) {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := m.ToResponse()
	return &resp, nil
}

func (s *catalogService) CreateMagazine(ctx context.Context, req *catalog.CreateMagazineRequest) (*catalog.MagazineResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m, err := s.session().CreateMagazine(ctx, req.Name, req.Category)
	if err != nil {
		return nil, err
	}
	resp := m.ToResponse()
	return &resp, nil
}

func (s *catalogService) UpdateMagazine(ctx context.Context, id int64, req *catalog.UpdateMagazineRequest) (*catalog.MagazineResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := m.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if err := m.SetCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if err := m.Save(ctx); err != nil {
		return nil, err
	}

	resp := m.ToResponse()
	return &resp, nil
}

func (s *catalogService) DeleteMagazine(ctx context.Context, id int64) error {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return err
	}
	return m.Delete(ctx)
}

func (s *catalogService) MagazineArticles(ctx context.Context, id int64) ([]catalog.ArticleResponse, error) {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := m.Articles(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ArticleResponses(articles), nil
}

func (s *catalogService) MagazineContributors(ctx context.Context, id int64) ([]catalog.AuthorResponse, error) {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, err
	}
	authors, err := m.Contributors(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.AuthorResponses(authors), nil
}

func (s *catalogService) ContributingAuthors(ctx context.Context, id int64) ([]catalog.AuthorResponse, error) {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, err
	}
	authors, err := m.ContributingAuthors(ctx)
	if err != nil || authors == nil {
		return nil, err
	}
	return catalog.AuthorResponses(authors), nil
}

func (s *catalogService) ArticleTitles(ctx context.Context, id int64) ([]string, bool, error) {
	m, err := s.session().FindMagazine(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return m.ArticleTitles(ctx)
}

// ---- articles ----

func (s *catalogService) ListArticles(ctx context.Context) ([]catalog.ArticleResponse, error) {
	articles, err := s.session().Articles(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ArticleResponses(articles), nil
}

func (s *catalogService) GetArticle(ctx context.Context, id int64) (*catalog.ArticleResponse, error) {
	a, err := s.session().FindArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := a.ToResponse()
	return &resp, nil
}

func (s *catalogService) CreateArticle(ctx context.Context, req *catalog.CreateArticleRequest) (*catalog.ArticleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess := s.session()
	author, err := sess.FindAuthor(ctx, req.AuthorID)
	if catalog.IsNotFound(err) {
		return nil, catalog.NewTypeError("article", "author_id", "does not reference a saved author")
	}
	if err != nil {
		return nil, err
	}
	mag, err := sess.FindMagazine(ctx, req.MagazineID)
	if catalog.IsNotFound(err) {
		return nil, catalog.NewTypeError("article", "magazine_id", "does not reference a saved magazine")
	}
	if err != nil {
		return nil, err
	}

	a, err := sess.CreateArticle(ctx, req.Title, req.Content, author, mag)
	if err != nil {
		return nil, err
	}
	resp := a.ToResponse()
	return &resp, nil
}

func (s *catalogService) UpdateArticle(ctx context.Context, id int64, req *catalog.UpdateArticleRequest) (*catalog.ArticleResponse, error) {
	if err := req.Immutable(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.session().FindArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(ctx, *req.Content); err != nil {
		return nil, err
	}

	resp := a.ToResponse()
	return &resp, nil
}

func (s *catalogService) DeleteArticle(ctx context.Context, id int64) error {
	a, err := s.session().FindArticle(ctx, id)
	if err != nil {
		return err
	}
	return a.Delete(ctx)
}

func (s *catalogService) ArticleAuthor(ctx context.Context, id int64) (*catalog.AuthorResponse, error) {
	a, err := s.session().FindArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	author, err := a.Author(ctx)
	if err != nil {
		return nil, err
	}
	resp := author.ToResponse()
	return &resp, nil
}

func (s *catalogService) ArticleMagazine(ctx context.Context, id int64) (*catalog.MagazineResponse, error) {
	a, err := s.session().FindArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	mag, err := a.Magazine(ctx)
	if err != nil {
		return nil, err
	}
	resp := mag.ToResponse()
	return &resp, nil
}
