package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP. InternalErrorCode lleva la clasificación
// precisa (taxonomía del motor o código del middleware) sea cual sea el status.
type ErrorResponse struct {
	InternalErrorCode string `json:"internal_error_code"`
	Message           string `json:"message"`
}
