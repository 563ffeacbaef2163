package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
	}
}

func (req BlogPostRequest) apply(post *models.BlogPost) {
	post.Title = strings.TrimSpace(req.Title)
	post.Content = req.Content
	post.Slug = strings.TrimSpace(req.Slug)
	post.Published = req.Published
	post.CoverImage = req.CoverImage
}

// getAllBlogPosts retrieves every blog post, drafts included
// @Summary Get all blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} models.BlogPost
// @Failure 401 {object} ErrorResponse "Unauthorized - admin only"
// @Router /admin/blog-posts [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		h.responder.WriteJSON(w, blogPosts)
	}
}

// getPublishedBlogPosts retrieves published blog posts, newest first
// @Summary Get published blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} models.BlogPost
// @Router /blog/posts [get]
func (h blogPostHandler) getPublishedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.blogPostRepo.FindPublished(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog posts", err))
			return
		}
		h.responder.WriteJSON(w, blogPosts)
	}
}

// getBlogPostBySlug retrieves one post. Drafts are only visible to the admin.
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param slug path string true "Blog post slug"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /blog/post/{slug} [get]
func (h blogPostHandler) getBlogPostBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("slug"))
			return
		}

		blogPost, err := h.blogPostRepo.FindBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog post", err))
			return
		}

		if !blogPost.Published && !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewNotFound("blog post"))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// createBlogPost creates a new blog post
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPost body BlogPostRequest true "Blog post data"
// @Success 201 {object} models.BlogPost
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blog post data"
// @Failure 409 {object} ErrorResponse "Conflict - slug already used"
// @Router /admin/blog-post [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlogPostRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var blogPost models.BlogPost
		req.apply(&blogPost)

		if err := h.blogPostRepo.Add(r.Context(), &blogPost); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog post", err))
			return
		}

		h.logger.Info().Uint("blogPostID", blogPost.ID).Str("slug", blogPost.Slug).Msg("blog post created")
		h.responder.WriteStatusJSON(w, http.StatusCreated, blogPost)
	}
}

// updateBlogPost updates an existing blog post
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPostID path int true "Blog Post ID"
// @Param blogPost body BlogPostRequest true "Updated blog post data"
// @Success 200 {object} models.BlogPost
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Failure 409 {object} ErrorResponse "Conflict - slug already used"
// @Router /admin/blog-post/{blogPostID} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := uintParam(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req BlogPostRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blogPost, err := h.blogPostRepo.FindByID(r.Context(), blogPostID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "blog post", err))
			return
		}
		req.apply(blogPost)

		if err := h.blogPostRepo.Update(r.Context(), blogPost); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, blogPost)
	}
}

// deleteBlogPost deletes a blog post by ID
// @Summary Delete blog post
// @Tags Blog Posts
// @Param blogPostID path int true "Blog Post ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Not Found - Blog post not found"
// @Router /admin/blog-post/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := uintParam(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), blogPostID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog post", err))
			return
		}

		h.responder.WriteJSON(w, MessageResponse{
			Status:  "success",
			Message: "blog post deleted successfully",
		})
	}
}
