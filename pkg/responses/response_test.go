package responses

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		common.ErrNotFound:                                    http.StatusNotFound,
		fmt.Errorf("wrap: %w", common.ErrValidation):          http.StatusBadRequest,
		common.ErrInsufficientBalance:                         http.StatusPaymentRequired,
		common.ErrEventFull:                                   http.StatusConflict,
		common.ErrEventExpired:                                http.StatusConflict,
		common.ErrForbidden:                                   http.StatusForbidden,
		fmt.Errorf("%w: dial tcp", common.ErrStoreUnavailable): http.StatusServiceUnavailable,
		fmt.Errorf("boom"):                                    http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestSendAppError_HidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendAppError(c, fmt.Errorf("secret stack detail"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fail", body.Status)
	assert.NotContains(t, body.Message, "secret")
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&pageSize=500", nil)

	page, size := PageParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, size)
}
