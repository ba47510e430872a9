package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidID(t *testing.T) {
	e := InvalidID("lessonId")
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, CodeInvalidID, e.Code)
	assert.Equal(t, "invalid lessonId", e.Error())
}

func TestInvalidBody_ValidationErrors(t *testing.T) {
	type checkIn struct {
		Day  int    `validate:"min=1"`
		Note string `validate:"required"`
	}
	verr := validator.New().Struct(checkIn{})
	require.Error(t, verr)

	e := InvalidBody(verr)
	assert.Equal(t, CodeInvalidBody, e.Code)
	assert.Contains(t, e.Error(), `Day failed "min"`)
	assert.Contains(t, e.Error(), `Note failed "required"`)

	var verrs validator.ValidationErrors
	assert.True(t, errors.As(e, &verrs))
}

func TestInvalidBody_JSONErrors(t *testing.T) {
	var dst struct {
		Minutes int `json:"minutes"`
	}
	err := json.Unmarshal([]byte(`{"minutes": "ten"}`), &dst)
	require.Error(t, err)
	assert.Contains(t, InvalidBody(err).Error(), "minutes must be int")

	err = json.Unmarshal([]byte(`{"minutes": `), &dst)
	require.Error(t, err)
	assert.Equal(t, CodeInvalidBody, InvalidBody(err).Code)

	err = json.Unmarshal([]byte(`{minutes}`), &dst)
	require.Error(t, err)
	assert.Contains(t, InvalidBody(err).Error(), "malformed json at offset")

	assert.Equal(t, "request body is required", InvalidBody(nil).Error())
}

func TestAuthErrors(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("missing caller").Status)
	assert.Equal(t, CodeUnauthorized, Unauthorized("missing caller").Code)
	assert.Equal(t, http.StatusForbidden, Forbidden("admin only").Status)
	assert.Equal(t, "request rejected (418)", (&Error{Status: http.StatusTeapot}).Error())
}
