// pkg/docker/monitor.go
package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amir-mohammad-HP/ws-cron/internal/types"
	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	dockerEvents "github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
)

// Container lifecycle actions delivered to subscribers
const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// ContainerEvent is a start or stop notification for a named container
type ContainerEvent struct {
	Action      string
	ContainerID string
	Name        string
	Time        time.Time
}

// apiClient is the part of the docker client the monitor uses
type apiClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]dockerTypes.Container, error)
	Events(ctx context.Context, options dockerTypes.EventsOptions) (<-chan dockerEvents.Message, <-chan error)
	ContainerExecCreate(ctx context.Context, container string, config dockerTypes.ExecConfig) (dockerTypes.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config dockerTypes.ExecStartCheck) (dockerTypes.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (dockerTypes.ContainerExecInspect, error)
	Close() error
}

// Monitor talks to the docker engine on behalf of the reconciler and the
// exec command
type Monitor struct {
	client apiClient
	logger logger.Logger
}

// NewMonitor connects to the docker engine
func NewMonitor(ctx context.Context, config *types.DockerConfig, log logger.Logger) (*Monitor, error) {
	cli, err := connect(ctx, config.SocketPath, log)
	if err != nil {
		return nil, &Error{Op: "connect", Err: err}
	}
	return newMonitor(cli, log), nil
}

func newMonitor(cli apiClient, log logger.Logger) *Monitor {
	return &Monitor{client: cli, logger: log}
}

// Close releases the client connection
func (dm *Monitor) Close() error {
	return dm.client.Close()
}

// RunningContainers returns the names of all running containers
func (dm *Monitor) RunningContainers(ctx context.Context) ([]string, error) {
	containers, err := dm.client.ContainerList(ctx, container.ListOptions{
		All: false, // Only running containers
	})
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}

	var names []string
	for _, c := range containers {
		if c.State != "" && c.State != "running" {
			continue
		}
		if name := primaryName(c.Names); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Subscribe streams container start and stop events in arrival order until
// ctx is cancelled or the engine stream fails. The event channel is closed
// when the subscription ends; at most one error is delivered.
func (dm *Monitor) Subscribe(ctx context.Context) (<-chan ContainerEvent, <-chan error) {
	filter := filters.NewArgs()
	filter.Add("type", "container")
	filter.Add("event", "start")
	filter.Add("event", "stop")
	filter.Add("event", "die")

	messages, errs := dm.client.Events(ctx, dockerTypes.EventsOptions{
		Filters: filter,
	})

	out := make(chan ContainerEvent)
	outErr := make(chan error, 1)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errs:
				if err != nil && ctx.Err() == nil {
					outErr <- &Error{Op: "events", Err: err}
				}
				return
			case msg := <-messages:
				event, ok := toContainerEvent(msg)
				if !ok {
					dm.logger.Debug("docker monitor | ignoring event %s for %s", string(msg.Action), shortID(msg.Actor.ID))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, outErr
}

func toContainerEvent(msg dockerEvents.Message) (ContainerEvent, bool) {
	var action string
	switch string(msg.Action) {
	case "start":
		action = ActionStart
	case "stop", "die":
		action = ActionStop
	default:
		return ContainerEvent{}, false
	}

	name := strings.TrimPrefix(msg.Actor.Attributes["name"], "/")
	if name == "" {
		return ContainerEvent{}, false
	}

	event := ContainerEvent{
		Action:      action,
		ContainerID: msg.Actor.ID,
		Name:        name,
	}
	if msg.TimeNano != 0 {
		event.Time = time.Unix(0, msg.TimeNano)
	} else if msg.Time != 0 {
		event.Time = time.Unix(msg.Time, 0)
	}
	return event, true
}

// primaryName picks the container's own name out of the list reported by
// the engine, skipping legacy link aliases such as /other/alias
func primaryName(names []string) string {
	for _, n := range names {
		n = strings.TrimPrefix(n, "/")
		if n != "" && !strings.Contains(n, "/") {
			return n
		}
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Error wraps a failed docker engine call
type Error struct {
	Op        string
	Container string
	Err       error
}

func (e *Error) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("docker %s %s: %v", e.Op, e.Container, e.Err)
	}
	return fmt.Sprintf("docker %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
