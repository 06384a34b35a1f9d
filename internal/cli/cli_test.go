package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"timsbridge/internal/cli"
	"timsbridge/internal/fiscal"
	"timsbridge/internal/model"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

type cliFixture struct {
	invoices  *mocks.MockInvoiceService
	setups    *mocks.MockDeviceSetupService
	responses *mocks.MockFiscalResponseService
	prober    *mocks.MockProber
	out       *bytes.Buffer
	released  bool
}

func newCLIFixture() *cliFixture {
	return &cliFixture{
		invoices:  new(mocks.MockInvoiceService),
		setups:    new(mocks.MockDeviceSetupService),
		responses: new(mocks.MockFiscalResponseService),
		prober:    new(mocks.MockProber),
		out:       new(bytes.Buffer),
	}
}

func (f *cliFixture) run(args ...string) error {
	root := cli.NewRootCmd(cli.Options{
		Load: func(context.Context) (*cli.Services, func() error, error) {
			release := func() error {
				f.released = true
				return nil
			}
			return &cli.Services{Invoices: f.invoices, Setups: f.setups, Responses: f.responses}, release, nil
		},
		Prober: f.prober,
		Out:    f.out,
	})
	root.SetArgs(args)
	root.SetOut(f.out)
	root.SetErr(new(bytes.Buffer))
	return root.ExecuteContext(context.Background())
}

func TestProbe_ExplicitAddress(t *testing.T) {
	f := newCLIFixture()
	f.prober.On("Probe", mock.Anything, "192.168.1.50:8086").Return(nil)

	require.NoError(t, f.run("probe", "--ip", "192.168.1.50"))

	assert.Contains(t, f.out.String(), "Connected to device at 192.168.1.50:8086")
	assert.False(t, f.released, "explicit address needs no database")
	f.setups.AssertNotCalled(t, "GetSetup", mock.Anything)
}

func TestProbe_StoredSetup(t *testing.T) {
	f := newCLIFixture()
	f.setups.On("GetSetup", mock.Anything).Return(&model.DeviceSetup{IP: "10.0.0.5", Port: 9000}, nil)
	f.prober.On("Probe", mock.Anything, "10.0.0.5:9000").Return(errors.New("connection refused"))

	err := f.run("probe")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "10.0.0.5:9000 unreachable")
	assert.True(t, f.released)
}

func TestSend(t *testing.T) {
	f := newCLIFixture()
	f.invoices.On("FiscalizeInvoice", mock.Anything, "INV-1", "ops").
		Return(&service.SubmissionResult{Invoice: "INV-1", Outcome: service.OutcomeAcknowledged, ResponseCode: "000", CUIN: "0170490000000123"}, nil)
	f.invoices.On("FiscalizeInvoice", mock.Anything, "INV-2", "ops").
		Return(&service.SubmissionResult{Invoice: "INV-2", Outcome: service.OutcomeRejected},
			fiscal.Wrap(fiscal.KindDeviceRejected, "submission.submit", fiscal.MsgDeviceRejected, errors.New("999")))

	err := f.run("send", "--actor", "ops", "INV-1", "INV-2")

	require.Error(t, err)
	assert.Equal(t, "1 of 2 invoices were not fiscalized", err.Error())
	out := f.out.String()
	assert.Contains(t, out, "INV-1\t"+service.OutcomeAcknowledged+"\t000\t0170490000000123")
	assert.Contains(t, out, "INV-2\tFAILED\t"+fiscal.MsgDeviceRejected)
	f.invoices.AssertExpectations(t)
}

func TestSend_RequiresInvoice(t *testing.T) {
	f := newCLIFixture()
	assert.Error(t, f.run("send"))
	f.invoices.AssertNotCalled(t, "FiscalizeInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetupShow(t *testing.T) {
	f := newCLIFixture()
	f.setups.On("GetSetup", mock.Anything).Return(&model.DeviceSetup{IP: "10.0.0.5", Port: 8086, TillNumber: "T1"}, nil)

	require.NoError(t, f.run("setup", "show"))
	assert.Contains(t, f.out.String(), `"till_number": "T1"`)
}

func TestSetupTestConnection(t *testing.T) {
	f := newCLIFixture()
	f.setups.On("TestConnection", mock.Anything, service.TestConnectionRequest{IP: "10.0.0.9", Port: 8086}, "timsctl").
		Return(service.ProbeResult{Success: false, Error: "i/o timeout", Status: model.DeviceInactive}, nil)

	err := f.run("setup", "test-connection", "--ip", "10.0.0.9")

	require.Error(t, err)
	assert.Contains(t, f.out.String(), `"status": "Inactive"`)
}

func TestResponsesExport_Stdout(t *testing.T) {
	f := newCLIFixture()
	f.responses.On("ExportResponses", mock.Anything, service.DeviceResponseFilter{InvoiceNumber: "INV-1"}, mock.Anything).
		Return(1, nil, []byte("xlsx-bytes"))

	require.NoError(t, f.run("responses", "export", "--invoice", "INV-1", "-o", "-"))
	assert.Equal(t, "xlsx-bytes", f.out.String())
}
