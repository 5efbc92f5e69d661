package form

import (
	"net/http"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/media"
)

// ServiceInput is the validated service form.
type ServiceInput struct {
	NameService      string   `validate:"required"`
	Details          []string `validate:"min=1"`
	Description      string
	ShortDescription string
	IsFeatured       bool
}

// ServiceForm is a decoded service submission.
type ServiceForm struct {
	ServiceInput
	Images      *media.Selection
	ImageErrors []string
}

var serviceMessages = map[string]string{
	"NameService": "Por favor, completa el nombre del servicio.",
	"Details":     "Por favor, añade al menos un detalle o protocolo.",
}

// DecodeService reads a service form. Existing images stay only when posted
// back as keep_image values.
func DecodeService(r *http.Request, current *domain.Service) (*ServiceForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	f := &ServiceForm{
		ServiceInput: ServiceInput{
			NameService:      value(r, "name_service"),
			Details:          listValues(r, "details", lines),
			Description:      value(r, "description"),
			ShortDescription: value(r, "short_description"),
			IsFeatured:       checked(r, "is_featured"),
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

	if err := check(f.ServiceInput, serviceMessages); err != nil {
		return f, err
	}
	return f, requireImages(f.Images, f.ImageErrors, "Por favor, añade al menos una imagen.")
}

// Fields builds the row to store with the final image list.
func (f *ServiceForm) Fields(imageURLs []string) domain.ServiceFields {
	return domain.ServiceFields{
		NameService:      f.NameService,
		Description:      domain.Text(f.Description),
		ShortDescription: domain.Text(f.ShortDescription),
		Details:          f.Details,
		ImageURLs:        imageURLs,
		IsFeatured:       f.IsFeatured,
	}
}

func decodeImages(r *http.Request, sel *media.Selection, imageErrors *[]string) error {
	p, err := uploads(r, "images")
	if err != nil {
		return err
	}
	*imageErrors = addImages(sel, p, p.rejected)
	return nil
}

func requireImages(sel *media.Selection, imageErrors []string, missing string) error {
	if len(imageErrors) > 0 {
		return newError(imageErrors[0])
	}
	if sel.Len() == 0 {
		return newError(missing)
	}
	return nil
}

// ServiceFormFrom pre-fills the edit form with s. A nil s gives the empty
// create form.
func ServiceFormFrom(s *domain.Service) *ServiceForm {
	if s == nil {
		return &ServiceForm{Images: media.NewSelection(domain.MaxImages, nil)}
	}
	return &ServiceForm{
		ServiceInput: ServiceInput{
			NameService:      s.NameService,
			Details:          append([]string(nil), s.Details...),
			Description:      s.Description.String(),
			ShortDescription: s.ShortDescription.String(),
			IsFeatured:       s.IsFeatured,
		},
		Images: media.NewSelection(domain.MaxImages, s.ImageURLs),
	}
}
