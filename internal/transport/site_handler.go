package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"pycsa-web/internal/blog"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/middleware"
	"pycsa-web/internal/repository"
	"pycsa-web/internal/service"
	"pycsa-web/internal/web"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgQuoteSent      = "📨 Cotización enviada con éxito!"
	msgQuoteFailed    = "🚫 Hubo un error al enviar el mensaje. Intenta de nuevo."
	msgContactSent    = "Mensaje enviado exitosamente!"
	msgContactFailed  = "Ocurrió un error al enviar el mensaje. Inténtalo de nuevo."
	msgCommentSent    = "¡Comentario enviado con éxito!"
	msgCommentFailed  = "Hubo un error al enviar tu comentario. Inténtalo de nuevo."
	msgBlogListFailed = "No se pudieron cargar las entradas del blog. Inténtalo más tarde."
	msgPostNotFound   = "Post no encontrado."
	msgPostInvalidID  = "ID de post inválido."
	msgPostFailed     = "Error al cargar el post. Inténtalo más tarde."
	msgPageNotFound   = "La página que buscas no existe."
)

// homePage is the data of the home template.
type homePage struct {
	Services []domain.Service
	Products []domain.Product
	Quote    *form.QuoteInput
}

// blogListPage is the data of the blog list template.
type blogListPage struct {
	Error    string
	Page     int
	Posts    []domain.BlogSummary
	Controls blog.Controls
	Recent   []domain.RecentPost
}

// blogDetailPage is the data of the blog detail template.
type blogDetailPage struct {
	Post     *domain.BlogPost
	Hero     string
	Blocks   []blog.Block
	Comment  *form.CommentInput
	Comments []domain.BlogComment
	Recent   []domain.RecentPost
}

// SiteHandler serves the public pages.
type SiteHandler struct {
	offerings service.OfferingService
	products  service.ProductService
	blogs     service.BlogService
	messages  service.MessageService
	views     *web.Renderer
	metrics   *middleware.Metrics
	logger    *zap.Logger
}

// NewSiteHandler creates a new SiteHandler
func NewSiteHandler(
	offerings service.OfferingService,
	products service.ProductService,
	blogs service.BlogService,
	messages service.MessageService,
	views *web.Renderer,
	metrics *middleware.Metrics,
	logger *zap.Logger,
) *SiteHandler {
	return &SiteHandler{
		offerings: offerings,
		products:  products,
		blogs:     blogs,
		messages:  messages,
		views:     views,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes registers the public pages. limit guards the form posts.
func (h *SiteHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/", h.Home)
	r.Get("/About", h.static("about", "Nosotros", "about"))
	r.Get("/Contact", h.Contact)
	r.Get("/terms", h.static("terms", "Términos de Servicio", ""))
	r.Get("/privacy", h.static("privacy", "Política de Privacidad", ""))
	r.Get("/blog", h.BlogList)
	r.Get("/blog/{postId}", h.BlogDetail)

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/quote", h.Quote)
		r.Post("/Contact", h.SendContact)
		r.Post("/blog/{postId}/comments", h.AddComment)
	})
}

// NotFound renders the error page for unknown routes.
func (h *SiteHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, msgPageNotFound, "/", "Volver al inicio")
}

func (h *SiteHandler) static(page, title, nav string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, http.StatusOK, page, view(r, title, nav, nil))
	}
}

// Home renders the services, featured products and the quote form.
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, &form.QuoteInput{}, nil)
}

func (h *SiteHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, quote *form.QuoteInput, st *web.Status) {
	data := &homePage{Quote: quote}

	services, err := h.offerings.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to load services", zap.Error(err))
	}
	data.Services = services

	products, err := h.products.ListFeatured(r.Context())
	if err != nil {
		h.logger.Error("Failed to load featured products", zap.Error(err))
	}
	data.Products = products

	v := view(r, "", "home", data)
	v.Status = st
	h.views.Render(w, status, "home", v)
}

// Quote sends the quote request of the home page.
func (h *SiteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	in, err := form.DecodeQuote(r)
	if in == nil {
		h.metrics.Submission("quote", outcomeError)
		h.renderHome(w, r, http.StatusBadRequest, &form.QuoteInput{}, web.Failure(msgQuoteFailed))
		return
	}
	if err != nil {
		h.metrics.Submission("quote", outcomeInvalid)
		h.renderHome(w, r, http.StatusUnprocessableEntity, in, web.Failure(err.Error()))
		return
	}

	if err := h.messages.SendQuote(r.Context(), in); err != nil {
		h.logger.Error("Failed to send quote request", zap.Error(err))
		h.metrics.Submission("quote", outcomeError)
		h.renderHome(w, r, http.StatusBadGateway, in, web.Failure(msgQuoteFailed))
		return
	}

	h.metrics.Submission("quote", outcomeOK)
	h.renderHome(w, r, http.StatusOK, &form.QuoteInput{}, web.Success(msgQuoteSent))
}

// Contact renders the contact form.
func (h *SiteHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderContact(w, r, http.StatusOK, &form.ContactInput{}, nil)
}

// SendContact sends the contact message.
func (h *SiteHandler) SendContact(w http.ResponseWriter, r *http.Request) {
	in, err := form.DecodeContact(r)
	if in == nil {
		h.metrics.Submission("contact", outcomeError)
		h.renderContact(w, r, http.StatusBadRequest, &form.ContactInput{}, web.Failure(msgContactFailed))
		return
	}
	if err != nil {
		h.metrics.Submission("contact", outcomeInvalid)
		h.renderContact(w, r, http.StatusUnprocessableEntity, in, web.Failure(err.Error()))
		return
	}

	if err := h.messages.SendContact(r.Context(), in); err != nil {
		h.logger.Error("Failed to send contact message", zap.Error(err))
		h.metrics.Submission("contact", outcomeError)
		h.renderContact(w, r, http.StatusBadGateway, in, web.Failure(msgContactFailed))
		return
	}

	h.metrics.Submission("contact", outcomeOK)
	h.renderContact(w, r, http.StatusOK, &form.ContactInput{}, web.Success(msgContactSent))
}

func (h *SiteHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, in *form.ContactInput, st *web.Status) {
	v := view(r, "Contacto", "contact", in)
	v.Status = st
	h.views.Render(w, status, "contact", v)
}

// BlogList renders one page of blog cards. Out of range pages redirect to
// the nearest valid page.
func (h *SiteHandler) BlogList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			http.Redirect(w, r, blogPageURL(1), http.StatusFound)
			return
		}
		page = p
	}

	data := &blogListPage{Page: page}
	state := blog.NewState(func(ctx context.Context, from, to int) (int, error) {
		posts, total, err := h.blogs.ListPage(ctx, from, to)
		if err != nil {
			return 0, err
		}
		data.Posts = posts
		return total, nil
	})

	// page 1 tells us the page count; a page past the end is never fetched
	err := state.Load(r.Context())
	if err == nil && page != state.Page {
		if clamped := blog.Clamp(page, state.TotalPages); clamped != page {
			http.Redirect(w, r, blogPageURL(clamped), http.StatusFound)
			return
		}
		_, err = state.Request(r.Context(), page)
	}
	if err != nil {
		h.logger.Error("Failed to load blog page", zap.Int("page", page), zap.Error(err))
		data.Error = msgBlogListFailed
		data.Posts = nil
	}

	data.Controls = blog.NewControls(state.Page, state.TotalPages)
	data.Recent = h.blogs.Recent(r.Context())
	h.views.Render(w, http.StatusOK, "blog_list", view(r, "Blog", "blog", data))
}

// BlogDetail renders a post with its comments.
func (h *SiteHandler) BlogDetail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	h.renderPost(w, r, http.StatusOK, post, &form.CommentInput{}, h.blogs.Comments(r.Context(), post.ID), nil)
}

// AddComment stores a visitor comment and shows it on top of the list.
func (h *SiteHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	comments := h.blogs.Comments(r.Context(), post.ID)

	in, err := form.DecodeComment(r)
	if in == nil {
		h.metrics.Submission("comment", outcomeError)
		h.renderPost(w, r, http.StatusBadRequest, post, &form.CommentInput{}, comments, web.Failure(msgCommentFailed))
		return
	}
	if err != nil {
		h.metrics.Submission("comment", outcomeInvalid)
		h.renderPost(w, r, http.StatusUnprocessableEntity, post, in, comments, web.Failure(err.Error()))
		return
	}

	created, err := h.blogs.AddComment(r.Context(), post.ID, in)
	if err != nil {
		h.logger.Error("Failed to add comment", zap.Int64("blog_id", post.ID), zap.Error(err))
		msg := msgCommentFailed
		if outcome(err) == outcomeInvalid {
			msg = err.Error()
		}
		h.metrics.Submission("comment", outcome(err))
		h.renderPost(w, r, statusFor(err), post, in, comments, web.Failure(msg))
		return
	}

	h.metrics.Submission("comment", outcomeOK)
	comments = append([]domain.BlogComment{*created}, comments...)
	h.renderPost(w, r, http.StatusOK, post, &form.CommentInput{}, comments, web.Success(msgCommentSent))
}

func (h *SiteHandler) loadPost(w http.ResponseWriter, r *http.Request) (*domain.BlogPost, bool) {
	id, ok := idParam(r, "postId")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, msgPostInvalidID, "/blog", "Volver al blog")
		return nil, false
	}

	post, err := h.blogs.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrBlogNotFound):
		h.renderError(w, r, http.StatusNotFound, msgPostNotFound, "/blog", "Volver al blog")
		return nil, false
	case err != nil:
		h.logger.Error("Failed to load blog post", zap.Int64("id", id), zap.Error(err))
		h.renderError(w, r, http.StatusInternalServerError, msgPostFailed, "/blog", "Volver al blog")
		return nil, false
	}
	return post, true
}

func (h *SiteHandler) renderPost(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	post *domain.BlogPost,
	comment *form.CommentInput,
	comments []domain.BlogComment,
	st *web.Status,
) {
	data := &blogDetailPage{
		Post:     post,
		Hero:     blog.Hero(post.ImageURLs),
		Blocks:   blog.Layout(post.Info, post.ImageURLs),
		Comment:  comment,
		Comments: comments,
		Recent:   h.blogs.Recent(r.Context()),
	}
	v := view(r, post.Title, "blog", data)
	v.Status = st
	h.views.Render(w, status, "blog_detail", v)
}

func (h *SiteHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message, backURL, backLabel string) {
	title := "Error"
	if status == http.StatusNotFound {
		title = "No encontrado"
	}
	h.views.Render(w, status, "error", view(r, title, "", &errorPage{
		Message:   message,
		BackURL:   backURL,
		BackLabel: backLabel,
	}))
}

// blogPageURL is the address of list page.
func blogPageURL(page int) string {
	if page <= 1 {
		return "/blog"
	}
	return "/blog?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
}
