package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-crud-api/pkg/apierror"
)

func TestExternalAPIServiceCall(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	t.Cleanup(upstream.Close)

	svc := NewExternalAPIService(upstream.URL, 5*time.Second)
	require.Equal(t, 5*time.Second, svc.Timeout())

	body, err := svc.Call(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"status":"ok"}`, body)
}

func TestExternalAPIServiceFailures(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)

	cases := map[string]struct {
		svc  *ExternalAPIService
		want int
	}{
		"unconfigured":   {svc: NewExternalAPIService("", time.Second), want: http.StatusServiceUnavailable},
		"upstream error": {svc: NewExternalAPIService(failing.URL, time.Second), want: http.StatusBadGateway},
		"timeout":        {svc: NewExternalAPIService(slow.URL, 50*time.Millisecond), want: http.StatusBadGateway},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.svc.Call(context.Background())
			require.Error(t, err)
			require.Equal(t, tc.want, apierror.StatusOf(err))
		})
	}
}
