package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pycsa-web/internal/admin"
	"pycsa-web/internal/auth"
	"pycsa-web/internal/domain"
	"pycsa-web/internal/form"
	"pycsa-web/internal/service"
	"pycsa-web/internal/web"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	adminHome        = "/Admin"
	msgSignOutFailed = "Error al cerrar sesión."
	msgLoginFailed   = "Error al iniciar sesión. Verifica tus credenciales."
	msgRowMissing    = "El registro ya no existe. La lista se ha actualizado."
)

// loginPage is the data of the login template.
type loginPage struct {
	Email string
	Error string
	Next  string
}

// confirmDelete is the data of the delete confirmation dialog.
type confirmDelete struct {
	Label  string
	Action string
	Cancel string
}

// adminPage is the data of an admin entity template. Form is the add form;
// Edit is the edit form, nil when no row is being edited.
type adminPage[T admin.Entity, F any] struct {
	Page    *admin.Page[T]
	Form    F
	Edit    F
	EditID  int64
	Confirm *confirmDelete
}

// entity describes one admin section. decode reports validation problems
// with a *form.Error and still returns the form so it can be shown again.
type entity[T admin.Entity, F any] struct {
	path    string
	page    string
	title   string
	nav     string
	label   func(T) string
	loadErr func(error) string
	blank   func(*T) F
	decode  func(r *http.Request, current *T) (F, error)
	list    func(ctx context.Context) ([]T, error)
	get     func(ctx context.Context, id int64) (*T, error)
	create  func(ctx context.Context, f F) (*T, error)
	update  func(ctx context.Context, id int64, f F) (*T, error)
	remove  func(ctx context.Context, id int64) error

	added, updated, deleted              string
	addFailed, updateFailed, deleteFailed string
}

// AdminHandler serves the back-office: sign-in and the entity pages.
type AdminHandler struct {
	products  service.ProductService
	offerings service.OfferingService
	blogs     service.BlogService
	zones     service.DeliveryZoneService
	sessions  *auth.Manager
	views     *web.Renderer
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	products service.ProductService,
	offerings service.OfferingService,
	blogs service.BlogService,
	zones service.DeliveryZoneService,
	sessions *auth.Manager,
	views *web.Renderer,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		products:  products,
		offerings: offerings,
		blogs:     blogs,
		zones:     zones,
		sessions:  sessions,
		views:     views,
		logger:    logger,
	}
}

// RegisterRoutes registers the /Admin routes. Everything except the login
// page goes through requireSession.
func (h *AdminHandler) RegisterRoutes(r chi.Router, requireSession func(http.Handler) http.Handler) {
	r.Route(adminHome, func(r chi.Router) {
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", h.Dashboard)
			r.Post("/logout", h.Logout)

			mount(r, h, h.productSection())
			mount(r, h, h.serviceSection())
			mount(r, h, h.blogSection())
			mount(r, h, h.zoneSection())
		})
	})
}

// LoginPage renders the sign-in form. A signed-in admin goes straight on.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, err := h.sessions.Current(w, r); err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, &loginPage{Next: next})
}

// Login signs the admin in with email and password.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, &loginPage{Error: msgLoginFailed})
		return
	}

	data := &loginPage{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  safeNext(r.PostFormValue("next")),
	}

	if _, err := h.sessions.SignIn(w, r, data.Email, r.PostFormValue("password")); err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("Admin sign-in error", zap.Error(err))
			status = http.StatusBadGateway
		}
		data.Error = msgLoginFailed
		h.renderLogin(w, r, status, data)
		return
	}

	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// Logout ends the session. The cookie is cleared even when the BaaS call
// fails; the admin is told about the failure on the login page.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.Warn("Admin sign-out failed", zap.Error(err))
		h.flash(w, r, auth.FlashError, msgSignOutFailed)
	}
	http.Redirect(w, r, h.loginURL(), http.StatusSeeOther)
}

// Dashboard links to the entity pages.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin/dashboard", "Panel", "", nil)
}

func (h *AdminHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data *loginPage) {
	h.render(w, r, status, "admin/login", "Iniciar Sesión", "", data)
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, page, title, nav string, data any) {
	v := view(r, title, nav, data)
	v.Flashes = h.sessions.Flashes(w, r)
	h.views.Render(w, status, page, v)
}

func (h *AdminHandler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.sessions.AddFlash(w, r, kind, msg); err != nil {
		h.logger.Error("Failed to save flash message", zap.Error(err))
	}
}

func (h *AdminHandler) loginURL() string {
	return adminHome + "/login"
}

// safeNext keeps post-login redirects inside the back-office.
func safeNext(next string) string {
	u, err := url.Parse(next)
	if err != nil || next == "" || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, adminHome) || strings.HasPrefix(u.Path, adminHome+"/login") {
		return adminHome
	}
	return u.RequestURI()
}

// mount registers list, create, update and delete for one section.
func mount[T admin.Entity, F any](r chi.Router, h *AdminHandler, e *entity[T, F]) {
	c := &controller[T, F]{h: h, e: e}
	r.Route(e.path, func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)
		r.Post("/{id}", c.update)
		r.Post("/{id}/delete", c.remove)
	})
}

type controller[T admin.Entity, F any] struct {
	h *AdminHandler
	e *entity[T, F]
}

func (c *controller[T, F]) url() string {
	return adminHome + c.e.path
}

// newPage loads the list. A failed load leaves ListError set and is
// rendered with a retry link.
func (c *controller[T, F]) newPage(ctx context.Context) *admin.Page[T] {
	page := admin.NewPage(admin.Loader[T](c.e.list), c.e.loadErr)
	if err := page.Load(ctx); err != nil {
		c.h.logger.Error("Failed to load admin list", zap.String("section", c.e.nav), zap.Error(err))
	}
	return page
}

func (c *controller[T, F]) data(page *admin.Page[T]) *adminPage[T, F] {
	return &adminPage[T, F]{Page: page, Form: c.e.blank(nil)}
}

func (c *controller[T, F]) render(w http.ResponseWriter, r *http.Request, status int, data *adminPage[T, F]) {
	c.h.render(w, r, status, c.e.page, c.e.title, c.e.nav, data)
}

// list renders the section. ?edit=id opens the edit form and ?delete=id
// asks for confirmation.
func (c *controller[T, F]) list(w http.ResponseWriter, r *http.Request) {
	page := c.newPage(r.Context())
	data := c.data(page)

	if id := queryID(r, "edit"); id > 0 && page.BeginEdit(id) {
		data.Edit = c.e.blank(page.Editing)
		data.EditID = id
	}
	if id := queryID(r, "delete"); id > 0 && page.RequestDelete(id) {
		row, _ := page.Find(id)
		data.Confirm = &confirmDelete{
			Label:  c.e.label(row),
			Action: fmt.Sprintf("%s/%d/delete", c.url(), id),
			Cancel: c.url(),
		}
	}

	c.render(w, r, http.StatusOK, data)
}

func (c *controller[T, F]) create(w http.ResponseWriter, r *http.Request) {
	f, err := c.e.decode(r, nil)
	if err == nil {
		_, err = c.e.create(r.Context(), f)
	}
	if err != nil {
		c.fail(w, r, err, c.e.addFailed, func(data *adminPage[T, F]) {
			data.Form = f
		})
		return
	}

	c.h.flash(w, r, auth.FlashSuccess, c.e.added)
	http.Redirect(w, r, c.url(), http.StatusSeeOther)
}

func (c *controller[T, F]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Redirect(w, r, c.url(), http.StatusSeeOther)
		return
	}

	current, err := c.e.get(r.Context(), id)
	if err != nil {
		c.missing(w, r, err)
		return
	}

	f, err := c.e.decode(r, current)
	if err == nil {
		_, err = c.e.update(r.Context(), id, f)
	}
	if err != nil {
		c.fail(w, r, err, c.e.updateFailed, func(data *adminPage[T, F]) {
			data.Edit = f
			data.EditID = id
		})
		return
	}

	c.h.flash(w, r, auth.FlashSuccess, c.e.updated)
	http.Redirect(w, r, c.url(), http.StatusSeeOther)
}

// remove runs the confirmed delete. On failure the refetched list is
// rendered with the error instead of redirecting.
func (c *controller[T, F]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Redirect(w, r, c.url(), http.StatusSeeOther)
		return
	}

	page := c.newPage(r.Context())
	if page.Status == admin.StatusError {
		c.render(w, r, http.StatusServiceUnavailable, c.data(page))
		return
	}
	if !page.RequestDelete(id) {
		c.h.flash(w, r, auth.FlashError, msgRowMissing)
		http.Redirect(w, r, c.url(), http.StatusSeeOther)
		return
	}

	if err := page.ConfirmDelete(r.Context(), c.e.remove); err != nil {
		c.h.logger.Error("Admin delete failed",
			zap.String("section", c.e.nav),
			zap.Int64("id", id),
			zap.Error(err),
		)
		page.Fail(service.UserMessage(c.e.deleteFailed, err))
		c.render(w, r, statusFor(err), c.data(page))
		return
	}

	c.h.flash(w, r, auth.FlashSuccess, c.e.deleted)
	http.Redirect(w, r, c.url(), http.StatusSeeOther)
}

// fail re-renders the section with the submitted form and the error in the
// action slot.
func (c *controller[T, F]) fail(w http.ResponseWriter, r *http.Request, err error, prefix string, keep func(*adminPage[T, F])) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.h.logger.Error("Admin save failed", zap.String("section", c.e.nav), zap.Error(err))
	}

	page := c.newPage(r.Context())
	page.Fail(service.UserMessage(prefix, err))

	data := c.data(page)
	keep(data)
	c.render(w, r, status, data)
}

func (c *controller[T, F]) missing(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		c.h.flash(w, r, auth.FlashError, msgRowMissing)
	} else {
		c.h.logger.Error("Failed to load admin row", zap.String("section", c.e.nav), zap.Error(err))
		c.h.flash(w, r, auth.FlashError, c.e.loadErr(err))
	}
	http.Redirect(w, r, c.url(), http.StatusSeeOther)
}

var errMalformedForm = errors.New("formulario inválido")

// malformed marks a body that could not be parsed at all.
func malformed(err error) error {
	return fmt.Errorf("%w: %v", errMalformedForm, err)
}

func (h *AdminHandler) productSection() *entity[domain.Product, *form.ProductForm] {
	return &entity[domain.Product, *form.ProductForm]{
		path:  "/products",
		page:  "admin/products",
		title: "Productos",
		nav:   "products",
		label: func(p domain.Product) string { return p.Name },
		loadErr: func(error) string {
			return "No se pudieron cargar los productos. Intenta recargar."
		},
		blank: form.ProductFormFrom,
		decode: func(r *http.Request, current *domain.Product) (*form.ProductForm, error) {
			f, err := form.DecodeProduct(r, current)
			if f == nil {
				return form.ProductFormFrom(current), malformed(err)
			}
			return f, err
		},
		list:   h.products.List,
		get:    h.products.Get,
		create: h.products.Create,
		update: h.products.Update,
		remove: h.products.Delete,

		added:        "¡Producto agregado exitosamente!",
		updated:      "¡Producto actualizado exitosamente!",
		deleted:      "Producto borrado.",
		addFailed:    "Error al agregar el producto",
		updateFailed: "Error al actualizar el producto",
		deleteFailed: "Error al borrar el producto",
	}
}

func (h *AdminHandler) serviceSection() *entity[domain.Service, *form.ServiceForm] {
	return &entity[domain.Service, *form.ServiceForm]{
		path:  "/services",
		page:  "admin/services",
		title: "Servicios",
		nav:   "services",
		label: func(s domain.Service) string { return s.NameService },
		loadErr: func(err error) string {
			return service.UserMessage("Error al cargar servicios", err)
		},
		blank: form.ServiceFormFrom,
		decode: func(r *http.Request, current *domain.Service) (*form.ServiceForm, error) {
			f, err := form.DecodeService(r, current)
			if f == nil {
				return form.ServiceFormFrom(current), malformed(err)
			}
			return f, err
		},
		list:   h.offerings.List,
		get:    h.offerings.Get,
		create: h.offerings.Create,
		update: h.offerings.Update,
		remove: h.offerings.Delete,

		added:        "¡Servicio agregado exitosamente!",
		updated:      "¡Servicio actualizado exitosamente!",
		deleted:      "Servicio y sus imágenes asociadas borrados exitosamente.",
		addFailed:    "Error al agregar el servicio",
		updateFailed: "Error al actualizar el servicio",
		deleteFailed: "Error al borrar el servicio",
	}
}

func (h *AdminHandler) blogSection() *entity[domain.BlogPost, *form.BlogForm] {
	return &entity[domain.BlogPost, *form.BlogForm]{
		path:  "/blogs",
		page:  "admin/blogs",
		title: "Blogs",
		nav:   "blogs",
		label: func(b domain.BlogPost) string { return b.Title },
		loadErr: func(err error) string {
			return service.UserMessage("Error al cargar blogs", err)
		},
		blank: form.BlogFormFrom,
		decode: func(r *http.Request, current *domain.BlogPost) (*form.BlogForm, error) {
			f, err := form.DecodeBlog(r, current)
			if f == nil {
				return form.BlogFormFrom(current), malformed(err)
			}
			return f, err
		},
		list:   h.blogs.List,
		get:    h.blogs.Get,
		create: h.blogs.Create,
		update: h.blogs.Update,
		remove: h.blogs.Delete,

		added:        "¡Entrada de blog agregada exitosamente!",
		updated:      "¡Entrada de blog actualizada exitosamente!",
		deleted:      "Blog y sus imágenes asociadas borrados exitosamente.",
		addFailed:    "Error al agregar el blog",
		updateFailed: "Error al actualizar el blog",
		deleteFailed: "Error al borrar el blog",
	}
}

func (h *AdminHandler) zoneSection() *entity[domain.DeliveryZone, *form.DeliveryZoneForm] {
	return &entity[domain.DeliveryZone, *form.DeliveryZoneForm]{
		path:  "/delivery-zones",
		page:  "admin/zones",
		title: "Zonas de Entrega",
		nav:   "zones",
		label: func(z domain.DeliveryZone) string {
			if z.Area != "" {
				return z.Province + " - " + z.Area.String()
			}
			return z.Province
		},
		loadErr: func(error) string {
			return "No se pudieron cargar las zonas de entrega. Intenta recargar."
		},
		blank: form.DeliveryZoneFormFrom,
		decode: func(r *http.Request, current *domain.DeliveryZone) (*form.DeliveryZoneForm, error) {
			f, err := form.DecodeDeliveryZone(r)
			if f == nil {
				return form.DeliveryZoneFormFrom(nil), malformed(err)
			}
			return f, err
		},
		list:   h.zones.List,
		get:    h.zones.Get,
		create: h.zones.Create,
		update: h.zones.Update,
		remove: h.zones.Delete,

		added:        "¡Zona de entrega agregada exitosamente!",
		updated:      "¡Zona de entrega actualizada exitosamente!",
		deleted:      "Zona de entrega borrada.",
		addFailed:    "Error al agregar la zona",
		updateFailed: "Error al actualizar la zona",
		deleteFailed: "Error al borrar la zona",
	}
}
