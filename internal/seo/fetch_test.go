package seo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html lang="en"><head><title>Acme Widgets and Industrial Supplies</title></head><body><h1>Acme</h1></body></html>`))
	}))
	defer srv.Close()

	rep, err := Fetch(context.Background(), srv.Client(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets and Industrial Supplies", rep.Title)
	assert.Equal(t, 1, rep.Headings[0])
	assert.Equal(t, "en", rep.Lang)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 410")
}
