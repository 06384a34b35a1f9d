package device

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedResponse is returned when the device answers with a body that
// does not match the documented response shape.
var ErrMalformedResponse = errors.New("malformed device response")

// Response is the device's answer to PostTims.
type Response struct {
	ResponseCode string
	Message      string
	TSIN         string
	CUSN         string
	CUIN         string
	QRCode       string
	SigningTime  string
}

type wireResponse struct {
	ResponseCode *string `json:"ResponseCode"`
	Message      *string `json:"Message"`
	TSIN         *string `json:"TSIN"`
	CUSN         *string `json:"CUSN"`
	CUIN         *string `json:"CUIN"`
	QRCode       *string `json:"QRCode"`
	DtStmp       *string `json:"dtStmp"`
}

// DecodeResponse parses a device response body. Unknown fields and a
// missing ResponseCode or Message are errors; a successful response must
// also carry every signature field.
func DecodeResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var w wireResponse
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after response object", ErrMalformedResponse)
	}

	var missing []string
	required := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}
	optional := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}

	r := &Response{
		ResponseCode: required("ResponseCode", w.ResponseCode),
		Message:      required("Message", w.Message),
	}
	if r.ResponseCode == successCode {
		r.TSIN = required("TSIN", w.TSIN)
		r.CUSN = required("CUSN", w.CUSN)
		r.CUIN = required("CUIN", w.CUIN)
		r.QRCode = required("QRCode", w.QRCode)
		r.SigningTime = required("dtStmp", w.DtStmp)
	} else {
		r.TSIN = optional(w.TSIN)
		r.CUSN = optional(w.CUSN)
		r.CUIN = optional(w.CUIN)
		r.QRCode = optional(w.QRCode)
		r.SigningTime = optional(w.DtStmp)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return r, nil
}

const successCode = "000"

// Acknowledged reports whether the device signed the invoice.
func (r *Response) Acknowledged() bool {
	return r.ResponseCode == successCode
}
