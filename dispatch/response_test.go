package dispatch

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBuffering(t *testing.T) {
	t.Run("status and headers flush only on finalize", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		res.Status(http.StatusCreated).Header("X-Request-Id", "abc")
		assert.Empty(t, w.Header().Get("X-Request-Id"), "headers must not hit the wire before finalize")

		require.NoError(t, res.Send([]byte("created")))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "abc", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "created", w.Body.String())
	})

	t.Run("resetting a header keeps its position and replaces the value", func(t *testing.T) {
		res := newResponse(httptest.NewRecorder())
		res.Header("A", "1").Header("B", "2").Header("A", "3")

		require.Len(t, res.headers, 2)
		assert.Equal(t, headerField{name: "A", value: "3"}, res.headers[0])
		assert.Equal(t, headerField{name: "B", value: "2"}, res.headers[1])
	})

	t.Run("explicit code overrides buffered status", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)
		res.Status(http.StatusAccepted)

		require.NoError(t, res.Text(http.StatusTeapot, "tea"))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("zero status defaults to 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		require.NoError(t, res.End())
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestResponseBodies(t *testing.T) {
	t.Run("Text sets a plain text content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		require.NoError(t, res.Text(http.StatusOK, "hello"))
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("JSON encodes the value", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		require.NoError(t, res.JSON(http.StatusOK, map[string]int{"n": 7}))
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n":7}`, w.Body.String())
	})

	t.Run("JSON encode failure leaves the response unsent", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		err := res.JSON(http.StatusOK, make(chan int))
		require.Error(t, err)
		assert.False(t, res.Sent())

		require.NoError(t, res.Text(http.StatusInternalServerError, "fallback"))
	})

	t.Run("XML encodes the value", func(t *testing.T) {
		type item struct {
			Name string `xml:"name"`
		}
		w := httptest.NewRecorder()
		res := newResponse(w)

		require.NoError(t, res.XML(http.StatusOK, item{Name: "thing"}))
		assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
		assert.Equal(t, "<item><name>thing</name></item>", w.Body.String())
	})

	t.Run("buffered content type wins over the implied one", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)
		res.Header("Content-Type", "text/html")

		require.NoError(t, res.Text(http.StatusOK, "<b>hi</b>"))
		assert.Equal(t, "text/html", w.Header().Get("Content-Type"))
	})
}

func TestResponseSealing(t *testing.T) {
	t.Run("second finalize is a double response violation", func(t *testing.T) {
		var reported []ViolationKind
		res := newResponse(httptest.NewRecorder())
		res.report = func(kind ViolationKind) { reported = append(reported, kind) }

		require.NoError(t, res.Text(http.StatusOK, "first"))

		err := res.Text(http.StatusOK, "second")
		var v *Violation
		require.ErrorAs(t, err, &v)
		assert.Equal(t, ViolationDoubleResponse, v.Kind)
		assert.Equal(t, []ViolationKind{ViolationDoubleResponse}, reported)
	})

	t.Run("write after revocation is a late write violation", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)

		require.True(t, res.revoke())

		err := res.Text(http.StatusOK, "too late")
		var v *Violation
		require.ErrorAs(t, err, &v)
		assert.Equal(t, ViolationLateWrite, v.Kind)
		assert.Empty(t, w.Body.String())
	})

	t.Run("revoke fails once sent", func(t *testing.T) {
		res := newResponse(httptest.NewRecorder())
		require.NoError(t, res.End())
		assert.False(t, res.revoke())
	})

	t.Run("status and header mutations after send are ignored", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := newResponse(w)
		require.NoError(t, res.Text(http.StatusOK, "body"))

		res.Status(http.StatusTeapot).Header("X-Late", "1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Late"))
	})

	t.Run("onSent fires exactly once after the wire write", func(t *testing.T) {
		fired := 0
		res := newResponse(httptest.NewRecorder())
		res.onSent = func() { fired++ }

		require.NoError(t, res.End())
		res.End()
		assert.Equal(t, 1, fired)
	})
}
