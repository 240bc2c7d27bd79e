package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChain(t *testing.T) {

	tag := func(name string, order *[]string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				*order = append(*order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	t.Run("FirstMiddlewareIsOutermost", func(t *testing.T) {
		// Arrange
		var order []string
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}), tag("first", &order), tag("second", &order))

		// Act
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
			t.Fatalf("unexpected execution order %v", order)
		}
	})

	t.Run("NoMiddlewares", func(t *testing.T) {
		// Arrange
		called := false
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		// Act
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		if !called {
			t.Fatalf("handler must run unwrapped")
		}
	})
}
