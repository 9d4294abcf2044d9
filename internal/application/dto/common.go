package dto

import "github.com/shopspring/decimal"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=200"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
// LotID/Shortfall/Retryable solo se llenan en errores del motor de inventario.
type ErrorResponse struct {
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Stage     string           `json:"stage,omitempty"`
	LotID     string           `json:"lot_id,omitempty"`
	Shortfall *decimal.Decimal `json:"shortfall,omitempty"`
	Retryable bool             `json:"retryable,omitempty"`
	Fields    any              `json:"fields,omitempty"`
}
