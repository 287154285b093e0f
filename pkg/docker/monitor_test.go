package docker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	dockerEvents "github.com/docker/docker/api/types/events"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	containers []dockerTypes.Container
	listErr    error

	messages chan dockerEvents.Message
	errs     chan error
	options  dockerTypes.EventsOptions

	createErr error
	execCmd   []string
	output    []byte
	exitCode  int
}

func (f *fakeClient) ContainerList(ctx context.Context, options container.ListOptions) ([]dockerTypes.Container, error) {
	return f.containers, f.listErr
}

func (f *fakeClient) Events(ctx context.Context, options dockerTypes.EventsOptions) (<-chan dockerEvents.Message, <-chan error) {
	f.options = options
	return f.messages, f.errs
}

func (f *fakeClient) ContainerExecCreate(ctx context.Context, name string, config dockerTypes.ExecConfig) (dockerTypes.IDResponse, error) {
	if f.createErr != nil {
		return dockerTypes.IDResponse{}, f.createErr
	}
	f.execCmd = config.Cmd
	return dockerTypes.IDResponse{ID: "0123456789abcdef"}, nil
}

func (f *fakeClient) ContainerExecAttach(ctx context.Context, execID string, config dockerTypes.ExecStartCheck) (dockerTypes.HijackedResponse, error) {
	conn, peer := net.Pipe()
	peer.Close()
	return dockerTypes.HijackedResponse{Conn: conn, Reader: bufio.NewReader(bytes.NewReader(f.output))}, nil
}

func (f *fakeClient) ContainerExecInspect(ctx context.Context, execID string) (dockerTypes.ContainerExecInspect, error) {
	return dockerTypes.ContainerExecInspect{ExecID: execID, ExitCode: f.exitCode}, nil
}

func (f *fakeClient) Close() error { return nil }

func framed(t *testing.T, stdout, stderr string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(stdout))
	require.NoError(t, err)
	_, err = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(stderr))
	require.NoError(t, err)
	return buf.Bytes()
}

func TestMonitor_RunningContainers(t *testing.T) {
	client := &fakeClient{containers: []dockerTypes.Container{
		{ID: "1", Names: []string{"/web"}, State: "running"},
		{ID: "2", Names: []string{"/other/alias", "/db"}, State: "running"},
		{ID: "3", Names: []string{"/paused"}, State: "paused"},
	}}
	m := newMonitor(client, logger.NewNullLogger())

	names, err := m.RunningContainers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "db"}, names)
}

func TestMonitor_RunningContainersError(t *testing.T) {
	m := newMonitor(&fakeClient{listErr: errors.New("boom")}, logger.NewNullLogger())

	_, err := m.RunningContainers(context.Background())
	var dockerErr *Error
	require.ErrorAs(t, err, &dockerErr)
	assert.Equal(t, "list", dockerErr.Op)
}

func TestMonitor_Subscribe(t *testing.T) {
	client := &fakeClient{
		messages: make(chan dockerEvents.Message, 4),
		errs:     make(chan error, 1),
	}
	m := newMonitor(client, logger.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, errs := m.Subscribe(ctx)

	assert.ElementsMatch(t, []string{"start", "stop", "die"}, client.options.Filters.Get("event"))
	assert.Equal(t, []string{"container"}, client.options.Filters.Get("type"))

	client.messages <- dockerEvents.Message{Action: "start", Actor: dockerEvents.Actor{ID: "a", Attributes: map[string]string{"name": "web"}}}
	client.messages <- dockerEvents.Message{Action: "start", Actor: dockerEvents.Actor{ID: "b"}}
	client.messages <- dockerEvents.Message{Action: "die", Actor: dockerEvents.Actor{ID: "c", Attributes: map[string]string{"name": "db"}}, TimeNano: 42}

	first := <-events
	assert.Equal(t, ContainerEvent{Action: ActionStart, ContainerID: "a", Name: "web"}, first)

	second := <-events
	assert.Equal(t, ActionStop, second.Action)
	assert.Equal(t, "db", second.Name)
	assert.Equal(t, time.Unix(0, 42), second.Time)

	client.errs <- errors.New("stream closed")
	err := <-errs
	require.Error(t, err)

	_, open := <-events
	assert.False(t, open)
}

func TestMonitor_SubscribeCancel(t *testing.T) {
	client := &fakeClient{messages: make(chan dockerEvents.Message), errs: make(chan error)}
	m := newMonitor(client, logger.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := m.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop on cancel")
	}
}

func TestMonitor_Exec(t *testing.T) {
	client := &fakeClient{output: framed(t, "one\ntwo\n", "oops\n")}
	m := newMonitor(client, logger.NewNullLogger())

	var lines []string
	err := m.Exec(context.Background(), "web", []string{"echo", "$HOME"}, func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "$HOME"}, client.execCmd)
	assert.Equal(t, []string{"one", "two", "oops"}, lines)
}

func TestMonitor_ExecExitCode(t *testing.T) {
	client := &fakeClient{output: framed(t, "", "fail\n"), exitCode: 3}
	m := newMonitor(client, logger.NewNullLogger())

	err := m.Exec(context.Background(), "web", []string{"false"}, func(string) {})
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
}

func TestMonitor_ExecNotFound(t *testing.T) {
	client := &fakeClient{createErr: errdefs.NotFound(errors.New("No such container: ghost"))}
	m := newMonitor(client, logger.NewNullLogger())

	err := m.Exec(context.Background(), "ghost", []string{"true"}, func(string) {})
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestPrimaryName(t *testing.T) {
	assert.Equal(t, "web", primaryName([]string{"/web"}))
	assert.Equal(t, "db", primaryName([]string{"/app/db_link", "/db"}))
	assert.Equal(t, "", primaryName(nil))
}
