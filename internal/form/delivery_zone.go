package form

import (
	"net/http"
	"strconv"

	"pycsa-web/internal/domain"
)

// DeliveryZoneInput is the validated delivery zone form.
type DeliveryZoneInput struct {
	Province      string   `validate:"required,province"`
	Cost          *float64 `validate:"required,gte=0"`
	Area          string
	EstimatedTime string
}

// DeliveryZoneForm is a decoded delivery zone submission.
type DeliveryZoneForm struct {
	DeliveryZoneInput
	CostText string
}

var zoneMessages = map[string]string{
	"Province.required": "Por favor, completa los campos obligatorios: Provincia y Costo.",
	"Province.province": "Selecciona una provincia de la lista.",
	"Cost.required":     "Por favor, completa los campos obligatorios: Provincia y Costo.",
	"Cost.gte":          "El costo debe ser un número válido y no puede ser negativo.",
}

// DecodeDeliveryZone reads a delivery zone form.
func DecodeDeliveryZone(r *http.Request) (*DeliveryZoneForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}

	f := &DeliveryZoneForm{
		DeliveryZoneInput: DeliveryZoneInput{
			Province:      value(r, "province"),
			Area:          value(r, "area"),
			EstimatedTime: value(r, "estimated_time"),
		},
		CostText: value(r, "cost"),
	}

	cost, err := parseFloat(f.CostText)
	if err != nil {
		return f, newError(zoneMessages["Cost.gte"])
	}
	f.Cost = cost

	if err := check(f.DeliveryZoneInput, zoneMessages); err != nil {
		return f, err
	}
	return f, nil
}

// Fields builds the row to store.
func (f *DeliveryZoneForm) Fields() domain.DeliveryZoneFields {
	fields := domain.DeliveryZoneFields{
		Province:      f.Province,
		Area:          domain.Text(f.Area),
		EstimatedTime: domain.Text(f.EstimatedTime),
	}
	if f.Cost != nil {
		fields.Cost = *f.Cost
	}
	return fields
}

// DeliveryZoneFormFrom pre-fills the edit form with z. A nil z gives the
// empty create form.
func DeliveryZoneFormFrom(z *domain.DeliveryZone) *DeliveryZoneForm {
	if z == nil {
		return &DeliveryZoneForm{}
	}
	cost := z.Cost
	return &DeliveryZoneForm{
		DeliveryZoneInput: DeliveryZoneInput{
			Province:      z.Province,
			Cost:          &cost,
			Area:          z.Area.String(),
			EstimatedTime: z.EstimatedTime.String(),
		},
		CostText: strconv.FormatFloat(cost, 'f', 2, 64),
	}
}
