package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorOmitsData(t *testing.T) {
	raw, err := json.Marshal(Error(404, "invoice not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","status_code":404,"error":"invoice not found"}`, string(raw))
}

func TestErrorWithData(t *testing.T) {
	raw, err := json.Marshal(ErrorWithData(422, "rejected", map[string]string{"outcome": "device_rejected"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","status_code":422,"error":"rejected","data":{"outcome":"device_rejected"}}`, string(raw))
}
