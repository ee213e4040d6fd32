package netx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))

		var in payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(payload{Name: in.Name + "!"})
	}))
	defer srv.Close()

	var out payload
	h := http.Header{"Authorization": []string{"Bearer t"}}
	err := DoJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL, h, payload{Name: "cv"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "cv!", out.Name)
}

func TestDoJSON_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out := payload{Name: "kept"}
	require.NoError(t, DoJSON(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil, &out))
	assert.Equal(t, "kept", out.Name)
}

func TestDoJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	err := DoJSON(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, "status 403: forbidden", se.Error())
}

func TestDoJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := DoJSON(context.Background(), http.DefaultClient, http.MethodGet, url, nil, nil, nil)
	require.Error(t, err)
	assert.False(t, IsStatus(err))
}

func TestDoJSON_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	var out payload
	err := DoJSON(context.Background(), srv.Client(), http.MethodGet, srv.URL, nil, nil, &out)
	assert.ErrorContains(t, err, "decode response")
}
