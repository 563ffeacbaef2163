package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/errs"
)

func TestResendMailerSend(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"id":"email_1"}`)
	}))
	defer srv.Close()

	mailer := NewResendMailer("re_test", "Yazameet <hi@yazameet.test>").WithBaseURL(srv.URL)
	err := mailer.Send(context.Background(), Email{To: []string{"a@example.com"}, Subject: "Hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Yazameet <hi@yazameet.test>", got.From)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "<p>hi</p>", got.Html)
}

func TestResendMailerRequiresRecipient(t *testing.T) {
	mailer := NewResendMailer("re_test", "from@example.com")
	err := mailer.Send(context.Background(), Email{Subject: "Hi"})
	assert.True(t, errs.IsBadRequest(err))
}

func TestResendMailerProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"invalid from address"}`)
	}))
	defer srv.Close()

	mailer := NewResendMailer("re_test", "bad").WithBaseURL(srv.URL)
	err := mailer.Send(context.Background(), Email{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.True(t, errs.IsEmailDeliveryError(err))
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestResendMailerSendBatchSplits(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails/batch", r.URL.Path)
		var payload []ResendEmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		sizes = append(sizes, len(payload))
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	emails := make([]Email, 250)
	for i := range emails {
		emails[i] = Email{To: []string{fmt.Sprintf("u%d@example.com", i)}, Subject: "New"}
	}

	mailer := NewResendMailer("re_test", "from@example.com").WithBaseURL(srv.URL)
	require.NoError(t, mailer.SendBatch(context.Background(), emails))
	assert.Equal(t, []int{100, 100, 50}, sizes)
}

func TestNewMailerFallsBackToLog(t *testing.T) {
	_, isLog := NewMailer(config.Config{}).(LogMailer)
	assert.True(t, isLog)

	_, isResend := NewMailer(config.Config{"RESEND_API_KEY": "re_x"}).(*ResendMailer)
	assert.True(t, isResend)

	assert.NoError(t, NewLogMailer().SendBatch(context.Background(), []Email{{To: []string{"a@example.com"}}}))
}
