package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var messages = map[string]string{
	"invalid_request":        "Dados inválidos.",
	"invalid_id":             "Identificador inválido.",
	"invalid_date":           "Data inválida.",
	"invalid_time":           "Horário inválido.",
	"invalid_window":         "Janela de horário inválida.",
	"overlapping_windows":    "As janelas de manhã e tarde se sobrepõem.",
	"invalid_weekday":        "Dia da semana inválido.",
	"invalid_duration":       "Duração inválida. Use 60, 90 ou 120 minutos.",
	"invalid_range":          "Intervalo de datas inválido.",
	"range_too_large":        "Intervalo de datas muito grande.",
	"invalid_participants":   "Número de participantes inválido.",
	"missing_player_name":    "Nome do jogador obrigatório.",
	"missing_player_contact": "Informe e-mail ou telefone.",
	"invalid_email":          "E-mail inválido.",
	"invalid_phone":          "Telefone inválido.",
	"invalid_payment_method": "Forma de pagamento inválida.",
	"missing_card_token":     "Token do cartão obrigatório.",
	"payment_declined":       "Pagamento recusado.",
	"too_soon":               "Horário muito próximo. Escolha outro.",
	"invalid_action":         "Ação inválida.",
	"invalid_status":         "Status inválido.",
	"invalid_transition":     "Transição inválida.",
	"slot_unavailable":       "Horário indisponível.",
	"booking_already_final":  "Reserva já finalizada.",
	"booking_expired":        "Prazo de resposta expirado.",
	"booking_not_found":      "Reserva não encontrada.",
	"club_not_found":         "Clube não encontrado.",
	"trainer_not_found":      "Treinador não encontrado.",
	"exception_not_found":    "Exceção não encontrada.",
}

// Message devolve o texto para o usuário; códigos sem texto caem no genérico.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "Não foi possível concluir a operação."
}

// CodeOf devolve o código do erro de negócio, ou "" para os demais.
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// FromError escreve a resposta para qualquer erro vindo de um caso de uso.
// Erros que não são de negócio viram 500 com o código informado.
func FromError(c *gin.Context, err error, internalCode string) {
	code := CodeOf(err)
	if code == "" {
		Internal(c, internalCode, "Erro interno.")
		return
	}
	Write(c, StatusFor(err), code, Message(code))
}

// WriteWith inclui dados extras na resposta de erro (ex.: reserva atual no 409).
func WriteWith(c *gin.Context, err error, extra gin.H) {
	code := CodeOf(err)
	status := StatusFor(err)
	if code == "" {
		code, status = "internal_error", http.StatusInternalServerError
	}

	body := gin.H{
		"error_code": code,
		"message":    Message(code),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
