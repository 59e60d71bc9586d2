package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_PostFormAndHeaders(t *testing.T) {
	var (
		gotMethod string
		gotForm   url.Values
		gotHeader string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Custom")
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = io.WriteString(w, "OK 375055")
	}))
	defer srv.Close()

	a := New(WithTimeout(2 * time.Second))

	body, err := a.Fetch(context.Background(), Request{
		URL:     srv.URL,
		Method:  "post",
		Headers: []string{"X-Custom: yes", "broken header"},
		Form:    url.Values{"DA": {"0642424242"}, "M": {"foo"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "OK 375055", body)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "yes", gotHeader)
	assert.Equal(t, "0642424242", gotForm.Get("DA"))
	assert.Equal(t, "foo", gotForm.Get("M"))
}

func TestFetch_GetEncodesFormAsQuery(t *testing.T) {
	var gotQuery url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
	}))
	defer srv.Close()

	a := New()

	body, err := a.Fetch(context.Background(), Request{
		URL:  srv.URL,
		Form: url.Values{"username": {"u"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "", body)
	assert.Equal(t, "u", gotQuery.Get("username"))
}

func TestFetch_RawBodyPassedThrough(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	a := New()

	raw := `{"messageContent":"foo"}`
	body, err := a.Fetch(context.Background(), Request{
		URL:     srv.URL,
		Method:  http.MethodPost,
		Headers: []string{"Content-Type: application/json"},
		Raw:     raw,
	})
	require.NoError(t, err)

	assert.Equal(t, raw, got)
	assert.Equal(t, `{"ok":true}`, body)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "moved")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, err := New().Fetch(context.Background(), Request{URL: srv.URL + "/old"})
	require.NoError(t, err)
	assert.Equal(t, "moved", body)
}

func TestFetch_ErrorStatusWithBodyReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "ERR -10")
	}))
	defer srv.Close()

	body, err := New().Fetch(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "ERR -10", body)
}

func TestFetch_ErrorStatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), Request{URL: srv.URL})
	require.Error(t, err)

	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusServiceUnavailable, ae.StatusCode)
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(WithTimeout(time.Second)).Fetch(context.Background(), Request{URL: addr})
	require.Error(t, err)

	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.NotNil(t, ae.Err)
}

func TestLastRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	a := New()

	_, ok := a.LastRequest()
	assert.False(t, ok)

	form := url.Values{"to": {"1"}}
	_, err := a.Fetch(context.Background(), Request{URL: srv.URL, Method: "POST", Form: form})
	require.NoError(t, err)

	form.Set("to", "changed")

	last, ok := a.LastRequest()
	require.True(t, ok)
	assert.Equal(t, srv.URL, last.URL)
	assert.Equal(t, "POST", last.Method)
	assert.Equal(t, "1", last.Form.Get("to"))
}
