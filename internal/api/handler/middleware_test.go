package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/config"
)

func testEngine(env string, route gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Deps{Env: env})
	r := gin.New()
	r.Use(h.Recovery())
	r.GET("/x", route)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	panicky := func(c *gin.Context) { panic("boom") }

	w := serve(testEngine(config.EnvProduction, panicky), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong!"}`, w.Body.String())

	w = serve(testEngine(config.EnvDevelopment, panicky), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong!","error":"boom"}`, w.Body.String())
}

func TestFail_HidesInternalOutsideDevelopment(t *testing.T) {
	var h *Handler
	route := func(c *gin.Context) { h.fail(c, apperr.Internal(errors.New("dial tcp 10.0.0.5:27017: timeout"))) }

	h = NewHandler(Deps{Env: config.EnvProduction})
	w := serve(testEngine(config.EnvProduction, route), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server error"}`, w.Body.String())

	h = NewHandler(Deps{Env: config.EnvDevelopment})
	w = serve(testEngine(config.EnvDevelopment, route), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, w.Body.String(), "dial tcp 10.0.0.5:27017: timeout")
}

func TestFail_ValidationFields(t *testing.T) {
	h := NewHandler(Deps{Env: config.EnvTest})
	route := func(c *gin.Context) {
		h.fail(c, apperr.Validation(apperr.FieldError{Field: "title", Message: "Title must be between 5 and 200 characters"}))
	}
	w := serve(testEngine(config.EnvTest, route), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":[{"field":"title","message":"Title must be between 5 and 200 characters"}]}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc.def":   "abc.def",
		"bearer abc.def":   "abc.def",
		"Bearer   spaced ": "spaced",
		"Basic Zm9vOmJhcg": "",
		"Bearer":           "",
		"":                 "",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(c), "header %q", header)
	}
}
