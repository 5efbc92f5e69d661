package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pycsa-web/internal/blog"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/middleware"
	"pycsa-web/internal/repository"
	"pycsa-web/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlogPageResponse is one page of the blog list.
type BlogPageResponse struct {
	Posts      []domain.BlogSummary `json:"posts"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Total      int                  `json:"total"`
}

// BlogPostResponse is a post with its laid out body.
type BlogPostResponse struct {
	*domain.BlogPost
	Hero   string      `json:"hero,omitempty"`
	Blocks []blockJSON `json:"blocks"`
}

type blockJSON struct {
	Kind   string   `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Images []string `json:"images,omitempty"`
}

// ContentHandler serves the published content as JSON.
type ContentHandler struct {
	offerings service.OfferingService
	products  service.ProductService
	blogs     service.BlogService
	zones     service.DeliveryZoneService
	metrics   *middleware.Metrics
	logger    *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(
	offerings service.OfferingService,
	products service.ProductService,
	blogs service.BlogService,
	zones service.DeliveryZoneService,
	metrics *middleware.Metrics,
	logger *zap.Logger,
) *ContentHandler {
	return &ContentHandler{
		offerings: offerings,
		products:  products,
		blogs:     blogs,
		zones:     zones,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes registers the /api routes. limit guards the comment post.
func (h *ContentHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/services", h.ListServices)
	r.Get("/products", h.ListProducts)
	r.Get("/delivery-zones", h.ListDeliveryZones)
	r.Get("/blogs", h.ListBlogs)
	r.Get("/blogs/recent", h.RecentBlogs)
	r.Get("/blogs/{id}", h.GetBlog)
	r.Get("/blogs/{id}/comments", h.ListComments)
	r.With(limit).Post("/blogs/{id}/comments", h.AddComment)
}

// ListServices returns every service, newest first.
func (h *ContentHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.logger, "services", func(ctx context.Context) (any, error) {
		return nonNil(h.offerings.List(ctx))
	})
}

// ListProducts returns the products. ?featured=true keeps the featured ones.
func (h *ContentHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	featured, _ := strconv.ParseBool(r.URL.Query().Get("featured"))
	respond(w, r, h.logger, "products", func(ctx context.Context) (any, error) {
		if featured {
			return nonNil(h.products.ListFeatured(ctx))
		}
		return nonNil(h.products.List(ctx))
	})
}

// ListDeliveryZones returns the zones by province and area.
func (h *ContentHandler) ListDeliveryZones(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.logger, "delivery zones", func(ctx context.Context) (any, error) {
		return nonNil(h.zones.List(ctx))
	})
}

// ListBlogs returns one page of blog cards. Pages past the end are clamped
// to the last page.
func (h *ContentHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = p
	}

	resp := &BlogPageResponse{Posts: []domain.BlogSummary{}}
	state := blog.NewState(func(ctx context.Context, from, to int) (int, error) {
		posts, total, err := h.blogs.ListPage(ctx, from, to)
		if err != nil {
			return 0, err
		}
		if posts != nil {
			resp.Posts = posts
		}
		resp.Total = total
		return total, nil
	})

	err := state.Load(r.Context())
	if err == nil && page != state.Page {
		// page 1 told us the page count; only fetch a page that exists
		_, err = state.Request(r.Context(), blog.Clamp(page, state.TotalPages))
	}
	if err != nil {
		h.logger.Error("Failed to load blog page", zap.Int("page", page), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load blog posts")
		return
	}

	resp.Page = state.Page
	resp.TotalPages = state.TotalPages
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// RecentBlogs returns the sidebar posts.
func (h *ContentHandler) RecentBlogs(w http.ResponseWriter, r *http.Request) {
	recent := h.blogs.Recent(r.Context())
	if recent == nil {
		recent = []domain.RecentPost{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, recent)
}

// GetBlog returns a post and its body blocks.
func (h *ContentHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	post, ok := h.post(w, r)
	if !ok {
		return
	}

	resp := &BlogPostResponse{
		BlogPost: post,
		Hero:     blog.Hero(post.ImageURLs),
		Blocks:   []blockJSON{},
	}
	for _, b := range blog.Layout(post.Info, post.ImageURLs) {
		resp.Blocks = append(resp.Blocks, blockJSON{Kind: b.Kind.String(), Text: b.Text, Images: b.Images})
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// ListComments returns the comments of a post, newest first.
func (h *ContentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid blog id")
		return
	}
	comments := h.blogs.Comments(r.Context(), id)
	if comments == nil {
		comments = []domain.BlogComment{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, comments)
}

// AddComment stores a comment sent as JSON.
func (h *ContentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.post(w, r)
	if !ok {
		return
	}

	var req form.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.Submission("comment", outcomeInvalid)
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.blogs.AddComment(r.Context(), post.ID, &req)
	if err != nil {
		h.metrics.Submission("comment", outcome(err))

		var formErr *form.Error
		if errors.As(err, &formErr) {
			middleware.RespondWithValidationErrors(w, formErr.Message, formErr.Fields)
			return
		}
		h.logger.Error("Failed to add comment", zap.Int64("blog_id", post.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to add comment")
		return
	}

	h.metrics.Submission("comment", outcomeOK)
	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *ContentHandler) post(w http.ResponseWriter, r *http.Request) (*domain.BlogPost, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid blog id")
		return nil, false
	}

	post, err := h.blogs.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrBlogNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "blog not found")
		return nil, false
	case err != nil:
		h.logger.Error("Failed to load blog post", zap.Int64("id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load blog post")
		return nil, false
	}
	return post, true
}

// respond writes the result of load, or the error envelope when it fails.
func respond(w http.ResponseWriter, r *http.Request, logger *zap.Logger, what string, load func(ctx context.Context) (any, error)) {
	v, err := load(r.Context())
	if err != nil {
		logger.Error("Failed to load "+what, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load "+what)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, v)
}

// nonNil turns a nil list into an empty one so clients always get an array.
func nonNil[T any](items []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
