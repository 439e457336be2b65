package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type pickRequest struct {
	PlayerID uint   `validate:"required"`
	Phase    string `validate:"oneof=upcoming open active completed"`
	Count    int    `validate:"min=1"`
}

func TestParseErrorValidation(t *testing.T) {
	err := validator.New().Struct(pickRequest{Phase: "live"})

	got := ParseError(err)
	assert.Equal(t, "PlayerID is required", got["PlayerID"])
	assert.Equal(t, "Phase must be one of [upcoming open active completed]", got["Phase"])
	assert.Equal(t, "Count must be at least 1", got["Count"])
}

func TestParseErrorPlain(t *testing.T) {
	assert.Equal(t, map[string]string{"error": "EOF"}, ParseError(errors.New("EOF")))
	assert.Empty(t, ParseError(nil))
}
