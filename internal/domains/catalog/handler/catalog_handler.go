package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"magazine-catalog/internal/domains/catalog"
	"magazine-catalog/internal/infrastructure/database"
	"magazine-catalog/internal/shared/response"
)

// StoreHealth reports store reachability and pool usage.
type StoreHealth interface {
	Ping(ctx context.Context) error
	Driver() string
	Stats() database.PoolStats
}

type CatalogHandler struct {
	service catalog.Service
	store   StoreHealth
}

func NewCatalogHandler(svc catalog.Service, store StoreHealth) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		store:   store,
	}
}

// fail writes err using the catalog error mapping.
func fail(c *gin.Context, err error) {
	response.ErrorResponse(c, catalog.ToHTTPStatus(err), catalog.ToErrorCode(err), err.Error())
}

// bind decodes the JSON body. Values of the wrong JSON kind are type
// validation errors; anything else unreadable is a bad request.
func bind(c *gin.Context, entity string, dest any) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		fail(c, catalog.NewTypeError(entity, typeErr.Field, "must be a JSON "+typeErr.Type.String()))
		return false
	}
	response.BadRequest(c, "invalid request body: "+err.Error())
	return false
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// GET /v1/health
func (h *CatalogHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error())
		return
	}
	stats := h.store.Stats()
	response.Success(c, http.StatusOK, gin.H{
		"status":   "ok",
		"driver":   h.store.Driver(),
		"pool":     stats,
		"avg_wait": stats.AvgWait().String(),
	})
}

// ════════════════════════════════════════════════════════════════
// AUTHORS
// ════════════════════════════════════════════════════════════════

// GET /v1/authors
func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	authors, err := h.service.ListAuthors(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// GET /v1/authors/:id
func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, author)
}

// POST /v1/authors
func (h *CatalogHandler) CreateAuthor(c *gin.Context) {
	var req catalog.CreateAuthorRequest
	if !bind(c, "author", &req) {
		return
	}
	author, err := h.service.CreateAuthor(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, author)
}

// DELETE /v1/authors/:id
func (h *CatalogHandler) DeleteAuthor(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAuthor(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// GET /v1/authors/:id/articles
func (h *CatalogHandler) AuthorArticles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	articles, err := h.service.AuthorArticles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, articles)
}

// GET /v1/authors/:id/magazines
func (h *CatalogHandler) AuthorMagazines(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	mags, err := h.service.AuthorMagazines(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, mags)
}

// ════════════════════════════════════════════════════════════════
// MAGAZINES
// ════════════════════════════════════════════════════════════════

// GET /v1/magazines
func (h *CatalogHandler) ListMagazines(c *gin.Context) {
	mags, err := h.service.ListMagazines(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, mags)
}

// GET /v1/magazines/:id
func (h *CatalogHandler) GetMagazine(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	mag, err := h.service.GetMagazine(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, mag)
}

// POST /v1/magazines
func (h *CatalogHandler) CreateMagazine(c *gin.Context) {
	var req catalog.CreateMagazineRequest
	if !bind(c, "magazine", &req) {
		return
	}
	mag, err := h.service.CreateMagazine(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, mag)
}

// PATCH /v1/magazines/:id
func (h *CatalogHandler) UpdateMagazine(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req catalog.UpdateMagazineRequest
	if !bind(c, "magazine", &req) {
		return
	}
	mag, err := h.service.UpdateMagazine(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, mag)
}

// DELETE /v1/magazines/:id
func (h *CatalogHandler) DeleteMagazine(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMagazine(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// GET /v1/magazines/:id/articles
func (h *CatalogHandler) MagazineArticles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	articles, err := h.service.MagazineArticles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, articles)
}

// GET /v1/magazines/:id/contributors
func (h *CatalogHandler) MagazineContributors(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	authors, err := h.service.MagazineContributors(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// GET /v1/magazines/:id/contributing-authors
// data is null when no author qualifies.
func (h *CatalogHandler) ContributingAuthors(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	authors, err := h.service.ContributingAuthors(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// GET /v1/magazines/:id/article-titles
// 204 when the magazine has no articles.
func (h *CatalogHandler) ArticleTitles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	titles, found, err := h.service.ArticleTitles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	response.Success(c, http.StatusOK, catalog.ArticleTitlesResponse{MagazineID: id, Titles: titles})
}

// ════════════════════════════════════════════════════════════════
// ARTICLES
// ════════════════════════════════════════════════════════════════

// GET /v1/articles
func (h *CatalogHandler) ListArticles(c *gin.Context) {
	articles, err := h.service.ListArticles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, articles)
}

// GET /v1/articles/:id
func (h *CatalogHandler) GetArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	article, err := h.service.GetArticle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, article)
}

// POST /v1/articles
func (h *CatalogHandler) CreateArticle(c *gin.Context) {
	var req catalog.CreateArticleRequest
	if !bind(c, "article", &req) {
		return
	}
	article, err := h.service.CreateArticle(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, article)
}

// PATCH /v1/articles/:id
func (h *CatalogHandler) UpdateArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req catalog.UpdateArticleRequest
	if !bind(c, "article", &req) {
		return
	}
	article, err := h.service.UpdateArticle(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, article)
}

// DELETE /v1/articles/:id
func (h *CatalogHandler) DeleteArticle(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteArticle(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// GET /v1/articles/:id/author
func (h *CatalogHandler) ArticleAuthor(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	author, err := h.service.ArticleAuthor(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, author)
}

// GET /v1/articles/:id/magazine
func (h *CatalogHandler) ArticleMagazine(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	mag, err := h.service.ArticleMagazine(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, mag)
}
