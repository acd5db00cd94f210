package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifierWithoutURL(t *testing.T) {
	assert.Nil(t, NewNotifier("", "secret"))
}

func TestSendSignsBody(t *testing.T) {
	var gotSig, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotEvent = r.Header.Get(HeaderEvent)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "s3cr3t")
	err := n.Send(context.Background(), &Payload{Event: "notification", Title: "Hi"})
	require.NoError(t, err)

	assert.Equal(t, "notification", gotEvent)
	assert.Equal(t, "sha256="+Sign("s3cr3t", gotBody), gotSig)
}

func TestSendFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL, "").Send(context.Background(), &Payload{})
	assert.Error(t, err)
}
