package form

import (
	"net/http"
	"strconv"

	"pycsa-web/internal/domain"
	"pycsa-web/internal/media"
)

// ProductInput is the validated product form.
type ProductInput struct {
	Name             string   `validate:"required"`
	Price            *float64 `validate:"required,gte=0"`
	Stock            *int     `validate:"required,gte=0"`
	Description      string
	ShortDescription string
	Category         string
	SKU              string
	IsFeatured       bool
}

// ProductForm is a decoded product submission. The raw price and stock text
// is kept so an invalid form can be shown again as typed.
type ProductForm struct {
	ProductInput
	PriceText   string
	StockText   string
	Images      *media.Selection
	ImageErrors []string
}

var productMessages = map[string]string{
	"Name":      "Por favor, completa los campos obligatorios: Nombre, Precio y Stock.",
	"Price.gte": "El precio y el stock no pueden ser negativos.",
	"Stock.gte": "El precio y el stock no pueden ser negativos.",
	"Price":     "Por favor, completa los campos obligatorios: Nombre, Precio y Stock.",
	"Stock":     "Por favor, completa los campos obligatorios: Nombre, Precio y Stock.",
}

// DecodeProduct reads a product form. current is the row being edited, nil
// when creating. The form is returned even when validation fails.
func DecodeProduct(r *http.Request, current *domain.Product) (*ProductForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	var original []string
	if current != nil {
		original = current.Images()
	}

	f := &ProductForm{
		ProductInput: ProductInput{
			Name:             value(r, "name"),
			Description:      value(r, "description"),
			ShortDescription: value(r, "short_description"),
			Category:         value(r, "category"),
			SKU:              value(r, "sku"),
			IsFeatured:       checked(r, "is_featured"),
		},
		PriceText: value(r, "price"),
		StockText: value(r, "stock"),
		Images:    media.NewSelection(1, original),
	}

	picked, err := uploads(r, "image")
	if err != nil {
		return nil, err
	}
	f.ImageErrors = picked.rejected
	if len(picked.files) > 0 {
		// a new image replaces the current one
		for _, u := range original {
			f.Images.RemoveExisting(u)
		}
		picked.files = picked.files[:1]
		f.ImageErrors = addImages(f.Images, picked, f.ImageErrors)
		if len(f.Images.Added()) == 0 {
			f.Images.Keep(original)
		}
	}

	price, priceErr := parseFloat(f.PriceText)
	stock, stockErr := parseInt(f.StockText)
	if priceErr != nil || stockErr != nil {
		return f, newError("El precio y el stock deben ser números válidos.")
	}
	f.Price, f.Stock = price, stock

	if err := check(f.ProductInput, productMessages); err != nil {
		return f, err
	}
	if len(f.ImageErrors) > 0 {
		return f, newError(f.ImageErrors[0])
	}
	return f, nil
}

// Fields builds the row to store with the final image URL ("" for none).
func (f *ProductForm) Fields(imageURL string) domain.ProductFields {
	fields := domain.ProductFields{
		Name:             f.Name,
		Description:      domain.Text(f.Description),
		ShortDescription: domain.Text(f.ShortDescription),
		ImageURL:         domain.Text(imageURL),
		Category:         domain.Text(f.Category),
		SKU:              domain.Text(f.SKU),
		IsFeatured:       f.IsFeatured,
	}
	if f.Price != nil {
		fields.Price = *f.Price
	}
	if f.Stock != nil {
		fields.Stock = *f.Stock
	}
	return fields
}

// ProductFormFrom pre-fills the edit form with p. A nil p gives the empty
// create form.
func ProductFormFrom(p *domain.Product) *ProductForm {
	if p == nil {
		return &ProductForm{Images: media.NewSelection(1, nil)}
	}
	price, stock := p.Price, p.Stock
	return &ProductForm{
		ProductInput: ProductInput{
			Name:             p.Name,
			Price:            &price,
			Stock:            &stock,
			Description:      p.Description.String(),
			ShortDescription: p.ShortDescription.String(),
			Category:         p.Category.String(),
			SKU:              p.SKU.String(),
			IsFeatured:       p.IsFeatured,
		},
		PriceText: strconv.FormatFloat(price, 'f', -1, 64),
		StockText: strconv.Itoa(stock),
		Images:    media.NewSelection(1, p.Images()),
	}
}
