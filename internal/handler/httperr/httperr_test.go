//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"condo-booking/internal/handler/httperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortWithError_RecordsPublicError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	cause := errors.New("slot taken")
	httperr.AbortWithError(c, http.StatusConflict, "SLOT_UNAVAILABLE", cause, "slot unavailable", nil)

	require.Len(t, c.Errors, 1)
	last := c.Errors.Last()
	assert.True(t, last.IsType(gin.ErrorTypePublic))
	assert.ErrorIs(t, last.Err, cause)

	resp, ok := last.Meta.(httperr.Response)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "SLOT_UNAVAILABLE", resp.Error.Code)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAbortWithError_NilCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	httperr.AbortWithError(c, http.StatusBadRequest, "VALIDATION", nil, "bad input", nil)

	require.Len(t, c.Errors, 1)
	assert.True(t, c.Errors.Last().IsType(gin.ErrorTypePublic))
	assert.EqualError(t, c.Errors.Last().Err, "VALIDATION: bad input")
}
