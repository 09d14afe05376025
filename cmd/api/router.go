package main

import (
	"github.com/gin-gonic/gin"

	"magazine-catalog/internal/shared/middleware"
	"magazine-catalog/pkg/container"
	"magazine-catalog/pkg/jwt"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	// Mutating routes need an editor token.
	editor := []gin.HandlerFunc{
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequireRole(jwt.RoleEditor),
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", c.CatalogHandler.Health)

		setupAuthorRoutes(v1, c, editor)
		setupMagazineRoutes(v1, c, editor)
		setupArticleRoutes(v1, c, editor)
	}

	return router
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container, editor []gin.HandlerFunc) {
	h := c.CatalogHandler
	authors := v1.Group("/authors")
	{
		authors.GET("", h.ListAuthors)
		authors.GET("/:id", h.GetAuthor)
		authors.GET("/:id/articles", h.AuthorArticles)
		authors.GET("/:id/magazines", h.AuthorMagazines)

		protected := authors.Group("", editor...)
		protected.POST("", h.CreateAuthor)
		protected.DELETE("/:id", h.DeleteAuthor)
	}
}

// ========================================
// MAGAZINE ROUTES
// ========================================
func setupMagazineRoutes(v1 *gin.RouterGroup, c *container.Container, editor []gin.HandlerFunc) {
	h := c.CatalogHandler
	magazines := v1.Group("/magazines")
	{
		magazines.GET("", h.ListMagazines)
		magazines.GET("/:id", h.GetMagazine)
		magazines.GET("/:id/articles", h.MagazineArticles)
		magazines.GET("/:id/contributors", h.MagazineContributors)
		magazines.GET("/:id/contributing-authors", h.ContributingAuthors)
		magazines.GET("/:id/article-titles", h.ArticleTitles)

		protected := magazines.Group("", editor...)
		protected.POST("", h.CreateMagazine)
		protected.PATCH("/:id", h.UpdateMagazine)
		protected.DELETE("/:id", h.DeleteMagazine)
	}
}

// ========================================
// ARTICLE ROUTES
// ========================================
func setupArticleRoutes(v1 *gin.RouterGroup, c *container.Container, editor []gin.HandlerFunc) {
	h := c.CatalogHandler
	articles := v1.Group("/articles")
	{
		articles.GET("", h.ListArticles)
		articles.GET("/:id", h.GetArticle)
		articles.GET("/:id/author", h.ArticleAuthor)
		articles.GET("/:id/magazine", h.ArticleMagazine)

		protected := articles.Group("", editor...)
		protected.POST("", h.CreateArticle)
		protected.PATCH("/:id", h.UpdateArticle)
		protected.DELETE("/:id", h.DeleteArticle)
	}
}
