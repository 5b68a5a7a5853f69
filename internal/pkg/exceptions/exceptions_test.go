package exceptions

import (
	"errors"
	"fmt"
	"telehealth-service/internal/pkg/constvars"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFormatFirstValidationError(t *testing.T) {
	type rating struct {
		Rating int    `validate:"gte=1,lte=5"`
		Status string `validate:"oneof=pending confirmed"`
	}
	validate := validator.New()

	assert.Equal(t, "rating must be greater than or equal to 1", FormatFirstValidationError(validate.Struct(rating{Status: "pending"})))
	assert.Equal(t, "status must be one of [pending, confirmed]", FormatFirstValidationError(validate.Struct(rating{Rating: 3, Status: "x"})))
	assert.Equal(t, constvars.ErrClientCannotProcessRequest, FormatFirstValidationError(nil))
	assert.Equal(t, "other", FormatFirstValidationError(errors.New("other")))
}

func TestCustomErrorWrapping(t *testing.T) {
	cause := errors.New("mongo timeout")
	err := ErrMongoDBFindDocument(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "mongo timeout")
	assert.NotEmpty(t, err.Locations)
	assert.Contains(t, err.Locations[0].File, "exceptions_test.go")

	wrapped := fmt.Errorf("repository: %w", err)
	assert.True(t, HasStatusCode(wrapped, constvars.StatusInternalServerError))
	assert.False(t, HasStatusCode(wrapped, constvars.StatusNotFound))
	assert.False(t, HasStatusCode(cause, constvars.StatusInternalServerError))
}
