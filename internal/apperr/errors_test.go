package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("page abc: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("token: %w", ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("limit: %w", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("property Rollup: %w", ErrUnsupportedProperty), http.StatusInternalServerError},
		{fmt.Errorf("query: %w", ErrTransient), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
