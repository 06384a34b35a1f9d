package fiscal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	rejected := New(KindDeviceRejected, "submission.send", MsgDeviceRejected)
	wrapped := fmt.Errorf("gate: %w", rejected)

	assert.Equal(t, KindDeviceRejected, KindOf(rejected))
	assert.Equal(t, KindDeviceRejected, KindOf(wrapped))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.True(t, IsKind(wrapped, KindDeviceRejected))
	assert.False(t, IsKind(nil, KindDeviceRejected))
}

func TestUserMessage(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:8086: connect: connection refused")

	assert.Equal(t, MsgTransport, UserMessage(Wrap(KindTransportFailed, "device.post", MsgTransport, cause)))
	assert.Equal(t, MsgUnexpected, UserMessage(Wrap(KindUnexpected, "responses.create", "insert failed", cause)))
	assert.Equal(t, MsgUnexpected, UserMessage(cause))
	assert.Equal(t, "", UserMessage(nil))
	assert.Nil(t, Wrap(KindUnexpected, "op", "msg", nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(KindTransportFailed, "device.post", MsgTransport, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "device.post: "+MsgTransport+": timeout", err.Error())
}

func TestNew(t *testing.T) {
	err := New(KindPreconditionFailed, "submission.preconditions", "100% of lines must carry a band")

	assert.Equal(t, "submission.preconditions: 100% of lines must carry a band", err.Error())
	assert.Equal(t, "100% of lines must carry a band", UserMessage(err))
	assert.Nil(t, errors.Unwrap(err))
}
