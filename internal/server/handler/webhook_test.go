package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/auto-me-bot/internal/core"
	"github.com/sevigo/auto-me-bot/internal/logger"
)

const testSecret = "s3cr3t"

type fakeReceiver struct {
	got []core.Delivery
	err error
}

func (f *fakeReceiver) Receive(_ context.Context, d core.Delivery) error {
	f.got = append(f.got, d)
	return f.err
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newRequest(body, event, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
	if event != "" {
		req.Header.Set("X-GitHub-Event", event)
	}
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	return req
}

func TestWebhookHandler_Handle(t *testing.T) {
	body := `{"action":"opened"}`

	tests := []struct {
		name        string
		req         *http.Request
		receiverErr error
		wantStatus  int
		wantCalls   int
	}{
		{name: "valid delivery", req: newRequest(body, "pull_request", sign(body)), wantStatus: http.StatusOK, wantCalls: 1},
		{name: "bad signature", req: newRequest(body, "pull_request", sign("tampered")), wantStatus: http.StatusUnauthorized},
		{name: "missing signature", req: newRequest(body, "pull_request", ""), wantStatus: http.StatusUnauthorized},
		{name: "missing event type", req: newRequest(body, "", sign(body)), wantStatus: http.StatusBadRequest},
		{name: "dispatch failure", req: newRequest(body, "pull_request", sign(body)), receiverErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receiver := &fakeReceiver{err: tt.receiverErr}
			h := NewWebhookHandler(testSecret, receiver, logger.Discard())

			rec := httptest.NewRecorder()
			h.Handle(rec, tt.req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			require.Len(t, receiver.got, tt.wantCalls)
			if tt.wantCalls > 0 {
				d := receiver.got[0]
				assert.Equal(t, "72d3162e-cc78-11e3-81ab-4c9367dc0958", d.ID)
				assert.Equal(t, "pull_request", d.Name)
				assert.JSONEq(t, body, string(d.Payload))
			}
		})
	}
}
