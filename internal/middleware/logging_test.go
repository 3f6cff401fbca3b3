package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWith(mw gin.HandlerFunc, handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET(path, handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLogger(t *testing.T) {
	t.Run("successful request logs one info entry", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		rec := serveWith(Logger(logger), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		}, "/ping")

		require.Equal(t, http.StatusNoContent, rec.Code)
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, http.StatusNoContent, entry.Data["status"])
		assert.Equal(t, "/ping", entry.Data["path"])
		assert.Equal(t, http.MethodGet, entry.Data["method"])
	})

	t.Run("server errors are logged at error level", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		serveWith(Logger(logger), func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		}, "/broken")

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
	})
}

func TestRecovery(t *testing.T) {
	logger, hook := test.NewNullLogger()
	rec := serveWith(Recovery(logger), func(c *gin.Context) {
		panic("catalog not loaded")
	}, "/boom")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Data, "panic")
}
