package device

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"timsbridge/internal/fiscal"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ackBody = `{"ResponseCode":"000","Message":"Success","TSIN":"TSIN-1","CUSN":"KRAMW017202207049144","CUIN":"0170490000000123","QRCode":"https://itax.kra.go.ke/KRA-Portal/invoiceChk.htm?actionCode=loadPage&invoiceNo=0170490000000123","dtStmp":"2024-05-02 10:15:04"}`

func deviceServer(t *testing.T, handler http.HandlerFunc) (addr string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestHTTPClient_PostInvoice_Acknowledged(t *testing.T) {
	var got map[string]interface{}
	addr := deviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PostPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, ackBody)
	})

	c := NewHTTPClient(time.Second, zerolog.Nop())
	resp, err := c.PostInvoice(context.Background(), addr, fiscal.Payload{SaleType: fiscal.SaleTypeSale, RctNo: "INV-1", Total: 232})
	require.NoError(t, err)

	assert.True(t, resp.Acknowledged())
	assert.Equal(t, "0170490000000123", resp.CUIN)
	assert.Equal(t, "2024-05-02 10:15:04", resp.SigningTime)
	assert.Equal(t, "INV-1", got["rctNo"])
	assert.Equal(t, 232.0, got["total"])
}

func TestHTTPClient_PostInvoice_RejectedWithErrorStatus(t *testing.T) {
	addr := deviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ResponseCode":"999","Message":"Invalid PIN"}`)
	})

	c := NewHTTPClient(time.Second, zerolog.Nop())
	resp, err := c.PostInvoice(context.Background(), addr, fiscal.Payload{RctNo: "INV-2"})
	require.NoError(t, err, "any decodable body is a device answer")

	assert.False(t, resp.Acknowledged())
	assert.Equal(t, "999", resp.ResponseCode)
	assert.Equal(t, "Invalid PIN", resp.Message)
	assert.Equal(t, "", resp.CUIN)
}

func TestHTTPClient_PostInvoice_Malformed(t *testing.T) {
	addr := deviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>gateway error</html>`)
	})

	c := NewHTTPClient(time.Second, zerolog.Nop())
	_, err := c.PostInvoice(context.Background(), addr, fiscal.Payload{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestHTTPClient_PostInvoice_Timeout(t *testing.T) {
	release := make(chan struct{})
	addr := deviceServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	c := NewHTTPClient(50*time.Millisecond, zerolog.Nop())
	_, err := c.PostInvoice(context.Background(), addr, fiscal.Payload{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPClient_PostInvoice_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewHTTPClient(time.Second, zerolog.Nop())
	_, err = c.PostInvoice(context.Background(), addr, fiscal.Payload{})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"acknowledged", ackBody, false},
		{"rejection without signature fields", `{"ResponseCode":"901","Message":"Device busy"}`, false},
		{"rejection with empty signature fields", `{"ResponseCode":"901","Message":"x","TSIN":"","CUSN":"","CUIN":"","QRCode":"","dtStmp":""}`, false},
		{"unknown field", `{"ResponseCode":"000","Message":"ok","Extra":1}`, true},
		{"missing code", `{"Message":"ok"}`, true},
		{"success without signature", `{"ResponseCode":"000","Message":"ok","CUIN":"1"}`, true},
		{"code as number", `{"ResponseCode":0,"Message":"ok"}`, true},
		{"trailing garbage", `{"ResponseCode":"901","Message":"x"} {}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
