package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppInfo(t *testing.T) {
	mw := AppInfo("app", "author", "version")

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "app", rec.Header().Get("App-Name"))
	assert.Equal(t, "author", rec.Header().Get("App-Author"))
	assert.Equal(t, "version", rec.Header().Get("App-Version"))
}

func TestAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name   string
		header string
		set    bool
		want   int
	}{
		{name: "valid key", header: "k", set: true, want: http.StatusTeapot},
		{name: "wrong key", header: "j", set: true, want: http.StatusUnauthorized},
		{name: "empty key", header: "", set: true, want: http.StatusUnauthorized},
		{name: "no header", set: false, want: http.StatusUnauthorized},
		{name: "bearer scheme is not accepted", header: "Bearer k", set: true, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.set {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			Auth("k")(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	rec := httptest.NewRecorder()
	h := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("test")
	}))

	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChain(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		mw("mw1"), mw("mw2"), mw("mw3"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"mw1", "mw2", "mw3"}, calls)

	calls = nil
	h = Chain(mw("mw1"), mw("mw2"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"mw1", "mw2"}, calls)
}

func TestMaybe(t *testing.T) {
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Maybe(false, mw)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Maybe(true, mw)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestFilterHeader(t *testing.T) {
	h := http.Header{
		"Authorization": {"secret"},
		"Cookie":        {"om-nom-nom"},
		"Accept":        {"*/*"},
	}

	assert.Equal(t, http.Header{
		"Authorization": {"***"},
		"Cookie":        {"***"},
		"Accept":        {"*/*"},
	}, filterHeader(h))
	assert.Nil(t, filterHeader(nil))
}

func TestStatsWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &statsWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusAccepted)
	n, err := ww.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// late status changes must not overwrite the recorded one
	ww.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusAccepted, ww.status)
	assert.Equal(t, int64(5), ww.size)
}
