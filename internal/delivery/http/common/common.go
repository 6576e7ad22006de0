package http_common

// ErrorResponse DTO для ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}
