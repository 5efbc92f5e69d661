package form

import (
	"net/http"
	"strings"
)

// CommentInput is a visitor comment on a blog post.
type CommentInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

var commentMessages = map[string]string{
	"Name.required":    "Por favor, completa tu nombre y comentario.",
	"Comment.required": "Por favor, completa tu nombre y comentario.",
	"Name.max":         "El nombre es demasiado largo.",
	"Comment.max":      "El comentario es demasiado largo (máximo 2000 caracteres).",
}

// Validate trims the input and checks it.
func (c *CommentInput) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Comment = strings.TrimSpace(c.Comment)
	return check(*c, commentMessages)
}

// DecodeComment reads the comment form of the blog detail page.
func DecodeComment(r *http.Request) (*CommentInput, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	c := &CommentInput{
		Name:    r.PostFormValue("name"),
		Comment: r.PostFormValue("comment"),
	}
	return c, c.Validate()
}

// ContactInput is the contact page message.
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

var contactMessages = map[string]string{
	"Email.email": "Por favor, ingresa un correo electrónico válido.",
	"Name":        "Por favor, completa los campos obligatorios.",
	"Email":       "Por favor, completa los campos obligatorios.",
	"Subject":     "Por favor, completa los campos obligatorios.",
	"Message":     "Por favor, completa los campos obligatorios.",
}

// DecodeContact reads the contact form.
func DecodeContact(r *http.Request) (*ContactInput, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	c := &ContactInput{
		Name:    value(r, "name"),
		Email:   value(r, "email"),
		Phone:   value(r, "phone"),
		Subject: value(r, "subject"),
		Message: value(r, "message"),
	}
	return c, check(*c, contactMessages)
}

// Params maps the form to the email template variables.
func (c *ContactInput) Params() map[string]string {
	phone := c.Phone
	if phone == "" {
		phone = "No proporcionado"
	}
	return map[string]string{
		"nombre":   c.Name,
		"correo":   c.Email,
		"telefono": phone,
		"asunto":   c.Subject,
		"mensaje":  c.Message,
	}
}

// QuoteInput is the quote request form on the home page.
type QuoteInput struct {
	Nombre       string `validate:"required"`
	Correo       string `validate:"required,email"`
	Telefono     string `validate:"required"`
	Provincia    string `validate:"required"`
	Distrito     string `validate:"required"`
	TipoServicio string `validate:"required"`
	Detalles     string
	Terms        bool `validate:"required"`
}

var quoteMessages = map[string]string{
	"Correo.email": "Por favor, ingresa un correo electrónico válido.",
	"Terms":        "Debes aceptar las Políticas de Privacidad.",
	"Nombre":       "Por favor, completa todos los campos obligatorios.",
	"Correo":       "Por favor, completa todos los campos obligatorios.",
	"Telefono":     "Por favor, completa todos los campos obligatorios.",
	"Provincia":    "Por favor, completa todos los campos obligatorios.",
	"Distrito":     "Por favor, completa todos los campos obligatorios.",
	"TipoServicio": "Por favor, completa todos los campos obligatorios.",
}

// DecodeQuote reads the quote request form.
func DecodeQuote(r *http.Request) (*QuoteInput, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	q := &QuoteInput{
		Nombre:       value(r, "nombre"),
		Correo:       value(r, "correo"),
		Telefono:     value(r, "telefono"),
		Provincia:    value(r, "provincia"),
		Distrito:     value(r, "distrito"),
		TipoServicio: value(r, "tipoServicio"),
		Detalles:     value(r, "detalles"),
		Terms:        checked(r, "terms"),
	}
	return q, check(*q, quoteMessages)
}

// Params maps the form to the email template variables.
func (q *QuoteInput) Params() map[string]string {
	return map[string]string{
		"nombre":       q.Nombre,
		"correo":       q.Correo,
		"telefono":     q.Telefono,
		"provincia":    q.Provincia,
		"distrito":     q.Distrito,
		"tipoServicio": q.TipoServicio,
		"detalles":     q.Detalles,
	}
}
