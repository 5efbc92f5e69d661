package form

import (
	"net/http"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/media"
)

// BlogInput is the validated blog post form. Field order is the order
// errors are reported in.
type BlogInput struct {
	Title    string   `validate:"required"`
	Date     string   `validate:"required"`
	Category string   `validate:"required"`
	Info     []string `validate:"min=1"`
	Excerpt  string   `validate:"max=200"`
}

// BlogForm is a decoded blog post submission.
type BlogForm struct {
	BlogInput
	ParsedDate  domain.Date
	Images      *media.Selection
	ImageErrors []string
}

var blogMessages = map[string]string{
	"Title":    "El título del blog es obligatorio.",
	"Date":     "La fecha del blog es obligatoria.",
	"Category": "La categoría del blog es obligatoria.",
	"Info":     "Añade al menos un párrafo de información.",
	"Excerpt":  "El extracto no puede superar los 200 caracteres.",
}

// DecodeBlog reads a blog post form. Paragraphs are separated by blank lines.
func DecodeBlog(r *http.Request, current *domain.BlogPost) (*BlogForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	f := &BlogForm{
		BlogInput: BlogInput{
			Title:    value(r, "title"),
			Date:     value(r, "date"),
			Category: value(r, "category"),
			Info:     listValues(r, "info", paragraphs),
			Excerpt:  value(r, "excerpt"),
		},
	}

	if current != nil {
		f.Images = media.NewSelection(domain.MaxImages, current.ImageURLs)
		f.Images.Keep(r.PostForm["keep_image"])
	} else {
		f.Images = media.NewSelection(domain.MaxImages, nil)
	}

	if err := decodeImages(r, f.Images, &f.ImageErrors); err != nil {
		return nil, err
	}

	if err := check(f.BlogInput, blogMessages); err != nil {
		return f, err
	}
	date, err := domain.ParseDate(f.Date)
	if err != nil {
		return f, newError("La fecha del blog no es válida.")
	}
	f.ParsedDate = date

	return f, requireImages(f.Images, f.ImageErrors, "Añade al menos una imagen.")
}

// Fields builds the row to store with the final image list.
func (f *BlogForm) Fields(imageURLs []string) domain.BlogFields {
	return domain.BlogFields{
		Title:     f.Title,
		Excerpt:   domain.Text(f.Excerpt),
		Info:      f.Info,
		Date:      f.ParsedDate,
		Category:  f.Category,
		ImageURLs: imageURLs,
	}
}

// BlogFormFrom pre-fills the edit form with b. A nil b gives the empty
// create form.
func BlogFormFrom(b *domain.BlogPost) *BlogForm {
	if b == nil {
		return &BlogForm{Images: media.NewSelection(domain.MaxImages, nil)}
	}
	return &BlogForm{
		BlogInput: BlogInput{
			Title:    b.Title,
			Date:     b.Date.String(),
			Category: b.Category,
			Info:     append([]string(nil), b.Info...),
			Excerpt:  b.Excerpt.String(),
		},
		ParsedDate: b.Date,
		Images:     media.NewSelection(domain.MaxImages, b.ImageURLs),
	}
}
