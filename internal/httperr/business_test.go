package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedBusinessError(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ErrConflict("slot_unavailable"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, IsBusiness(err, "slot_unavailable"))
	assert.True(t, IsConflict(err))
	assert.Equal(t, http.StatusConflict, StatusFor(err))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation("invalid_window"), http.StatusBadRequest},
		{ErrNotFound("booking_not_found"), http.StatusNotFound},
		{ErrExternal("payment_unavailable"), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestPostgresConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	exclusion := &pgconn.PgError{Code: "23P01"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsExclusionConflict(unique))
	assert.True(t, IsExclusionConflict(exclusion))
	assert.False(t, IsUniqueViolation(fmt.Errorf("other")))
}

func TestCodeOfAndMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrConflict("slot_unavailable"))

	assert.Equal(t, "slot_unavailable", CodeOf(err))
	assert.Equal(t, "Horário indisponível.", Message(CodeOf(err)))
	assert.Equal(t, "", CodeOf(errors.New("boom")))
	assert.NotEmpty(t, Message("unknown_code"))
}
