package query

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestOptionalInt(t *testing.T) {
	t.Parallel()

	v, err := OptionalInt(newContext(t, "/x?days=30"), "days")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 30, *v)

	v, err = OptionalInt(newContext(t, "/x"), "days")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = OptionalInt(newContext(t, "/x?days=abc"), "days")
	assert.Error(t, err)
}

func TestOptionalInts(t *testing.T) {
	t.Parallel()

	v, err := OptionalInts(newContext(t, "/x?windows=5,20,60"), "windows")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 20, 60}, v)

	v, err = OptionalInts(newContext(t, "/x"), "windows")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = OptionalInts(newContext(t, "/x?windows=5,x"), "windows")
	assert.Error(t, err)
}

func TestOptionalBool(t *testing.T) {
	t.Parallel()

	v, err := OptionalBool(newContext(t, "/x?skipMalformed=true"), "skipMalformed", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = OptionalBool(newContext(t, "/x"), "skipMalformed", false)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = OptionalBool(newContext(t, "/x?skipMalformed=maybe"), "skipMalformed", false)
	assert.Error(t, err)
}
