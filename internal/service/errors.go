package service

import (
	"errors"
	"fmt"

	"pycsa-web/internal/baas"
	"pycsa-web/internal/form"
	"pycsa-web/internal/media"
)

var ErrDuplicateSKU = errors.New("duplicate sku")

const msgImagesRequired = "Por favor, añade al menos una imagen."

// DuplicateSKUError reports a product SKU already used by another product.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("Error: El SKU '%s' ya existe. Por favor, usa uno diferente.", e.SKU)
}

func (e *DuplicateSKUError) Unwrap() error {
	return ErrDuplicateSKU
}

// UserMessage turns err into the text shown in the admin banner. Errors
// that already carry a Spanish message are shown verbatim; anything else is
// prefixed, e.g. "Error al guardar el producto: ...".
func UserMessage(prefix string, err error) string {
	if err == nil {
		return ""
	}

	var (
		formErr   *form.Error
		skuErr    *DuplicateSKUError
		uploadErr *media.UploadError
		limitErr  *media.LimitError
		apiErr    *baas.APIError
	)
	switch {
	case errors.As(err, &formErr), errors.As(err, &skuErr), errors.As(err, &uploadErr), errors.As(err, &limitErr):
		return err.Error()
	case errors.Is(err, ErrImagesRequired):
		return msgImagesRequired
	case errors.As(err, &apiErr):
		return fmt.Sprintf("%s: %s", prefix, apiErr.Message)
	default:
		return fmt.Sprintf("%s: %v", prefix, err)
	}
}
