package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	goplugin "github.com/hashicorp/go-plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jmylchreest/stylegen/internal/engine"
	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/source"
	"github.com/jmylchreest/stylegen/internal/style"
	"github.com/jmylchreest/stylegen/pkg/plugin"
)

// mockProcessRunner is a ProcessRunner for testing.
type mockProcessRunner struct {
	runFunc  func(ctx context.Context, path string, args []string) ([]byte, []byte, error)
	lastPath string
	lastArgs []string
}

func (m *mockProcessRunner) Run(ctx context.Context, path string, args []string, _ io.Reader) ([]byte, []byte, error) {
	m.lastPath = path
	m.lastArgs = args
	if m.runFunc != nil {
		return m.runFunc(ctx, path, args)
	}
	return []byte("{}"), nil, nil
}

func infoRunner(protocolVersion string) *mockProcessRunner {
	return &mockProcessRunner{
		runFunc: func(context.Context, string, []string) ([]byte, []byte, error) {
			out, err := json.Marshal(plugin.PluginInfo{Name: "stylegen", Version: "dev", ProtocolVersion: protocolVersion})
			return out, nil, err
		},
	}
}

func testEngine() *engine.Engine {
	return engine.NewBuilder().
		WithSource(source.Static{Style: style.NewBuilder().
			AddFill("Primary Blue", style.NewColor255(0, 0, 255, 1)).
			Build()}).
		Build()
}

func generate(id string) protocol.Request {
	return protocol.Request{
		ID:         id,
		Command:    protocol.CommandGenerateCode,
		Format:     protocol.FormatSCSS,
		ColorMode:  protocol.ColorModeRGBA,
		NameFormat: protocol.NameKebabHyphen,
	}
}

// connectStdio runs an engine over in-memory pipes and returns an executor
// attached to it.
func connectStdio(t *testing.T, e *engine.Engine) *Stdio {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	go func() {
		err := e.ServeStdio(context.Background(), reqR, respW)
		respW.CloseWithError(err)
	}()

	return NewStdio(reqW, respR, nil)
}

func TestParseTransport(t *testing.T) {
	for _, tr := range Transports() {
		got, err := ParseTransport(string(tr))
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	_, err := ParseTransport("grpc")
	assert.Error(t, err)
}

func TestInProcess(t *testing.T) {
	ex, err := New(context.Background(), Config{Transport: TransportInProcess, Engine: testEngine()})
	require.NoError(t, err)
	defer ex.Close()

	resp, err := ex.Execute(context.Background(), generate("a"))
	require.NoError(t, err)
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, "$primary-blue: rgba(0, 0, 255, 1.00);\n", resp.Code)

	_, err = New(context.Background(), Config{Transport: TransportInProcess})
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	runner := infoRunner(protocol.ProtocolVersion)
	info, err := Detect(context.Background(), runner, "/usr/bin/stylegen", []string{"--source", "styles.json"})
	require.NoError(t, err)
	assert.Equal(t, protocol.ProtocolVersion, info.ProtocolVersion)
	assert.Equal(t, "/usr/bin/stylegen", runner.lastPath)
	assert.Equal(t, []string{"engine", "--info", "--source", "styles.json"}, runner.lastArgs)
}

func TestDetectErrors(t *testing.T) {
	failing := &mockProcessRunner{runFunc: func(context.Context, string, []string) ([]byte, []byte, error) {
		return nil, []byte("boom"), errors.New("exit status 1")
	}}
	_, err := Detect(context.Background(), failing, "stylegen", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	garbage := &mockProcessRunner{runFunc: func(context.Context, string, []string) ([]byte, []byte, error) {
		return []byte("not json"), nil, nil
	}}
	_, err = Detect(context.Background(), garbage, "stylegen", nil)
	assert.ErrorContains(t, err, "failed to parse engine info")

	_, err = Detect(context.Background(), &mockProcessRunner{}, "stylegen", nil)
	assert.ErrorContains(t, err, "no protocol version")
}

func TestNewRejectsIncompatibleEngine(t *testing.T) {
	_, err := New(context.Background(), Config{
		Transport: TransportGoPlugin,
		Path:      "/opt/stylegen",
		Runner:    infoRunner("2.0.0"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible major version")
}

func TestNewGoPluginIsLazy(t *testing.T) {
	ex, err := New(context.Background(), Config{
		Transport: TransportGoPlugin,
		Path:      "/opt/stylegen",
		Runner:    infoRunner(protocol.ProtocolVersion),
	})
	require.NoError(t, err)
	require.IsType(t, &GoPlugin{}, ex)
	assert.Nil(t, ex.(*GoPlugin).client, "no process before the first request")
	require.NoError(t, ex.Close())

	_, err = ex.Execute(context.Background(), generate("late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestGoPluginExecute(t *testing.T) {
	client, _ := goplugin.TestPluginRPCConn(t, plugin.PluginMap(testEngine()), nil)
	defer client.Close()

	raw, err := client.Dispense(plugin.EnginePluginName)
	require.NoError(t, err)

	g := NewGoPlugin("/opt/stylegen", nil, nil)
	g.engine = raw.(engineClient)

	resp, err := g.Execute(context.Background(), generate("rpc-1"))
	require.NoError(t, err)
	assert.Equal(t, "rpc-1", resp.ID)
	assert.Equal(t, 1, resp.StyleCount())

	resp, err = g.Execute(context.Background(), protocol.Request{ID: "rpc-2", Command: protocol.CommandClean})
	require.NoError(t, err)
	assert.True(t, resp.HasCount())
	assert.Equal(t, 0, resp.StyleCount())

	bad := generate("rpc-3")
	bad.Format = "SASS"
	resp, err = g.Execute(context.Background(), bad)
	require.NoError(t, err)
	assert.ErrorIs(t, resp.Err(), protocol.ErrUnsupportedOption)
}

func TestStdioRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ex := connectStdio(t, testEngine())

	resp, err := ex.Execute(context.Background(), generate("s-1"))
	require.NoError(t, err)
	assert.Equal(t, "s-1", resp.ID)
	assert.Equal(t, "$primary-blue: rgba(0, 0, 255, 1.00);\n", resp.Code)

	resp, err = ex.Execute(context.Background(), protocol.Request{Command: protocol.CommandClean})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID, "an id is assigned when missing")
	assert.Equal(t, protocol.CommandClean, resp.Command)
	assert.Empty(t, resp.Code)

	require.NoError(t, ex.Close())

	_, err = ex.Execute(context.Background(), generate("s-2"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStdioConcurrentRequestsRouteById(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ex := connectStdio(t, testEngine())
	defer ex.Close()

	formats := protocol.Formats()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := generate(fmt.Sprintf("c-%d", i))
			req.Format = formats[i%len(formats)]
			resp, err := ex.Execute(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if resp.ID != req.ID {
				errs <- fmt.Errorf("request %s got response %s", req.ID, resp.ID)
				return
			}
			if resp.StyleCount() != 1 {
				errs <- fmt.Errorf("request %s got count %d", req.ID, resp.StyleCount())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestStdioEngineGoneFailsPending(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	ex := NewStdio(reqW, respR, nil)

	// An engine that reads one request and dies without answering.
	go func() {
		buf := make([]byte, 4096)
		_, _ = reqR.Read(buf)
		respW.Close()
		reqR.Close()
	}()

	_, err := ex.Execute(context.Background(), generate("lost"))
	assert.ErrorIs(t, err, ErrClosed)
	_ = ex.Close()
}

func TestStdioContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	slow := engine.NewBuilder().WithSource(engine.SourceFunc(func(ctx context.Context) (*style.OutputStyle, error) {
		time.Sleep(50 * time.Millisecond)
		return style.Empty(), nil
	})).Build()
	ex := connectStdio(t, slow)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := ex.Execute(ctx, generate("slow"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The superseded request still completes; its response is dropped.
	resp, err := ex.Execute(context.Background(), generate("next"))
	require.NoError(t, err)
	assert.Equal(t, "next", resp.ID)

	require.NoError(t, ex.Close())
}
