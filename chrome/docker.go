package chrome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/livefir/gridkit"
)

// HeadlessShellImage is the Chrome image used for dockerised runs
const HeadlessShellImage = "chromedp/headless-shell:latest"

// DefaultDebugPort is where headless-shell serves DevTools inside the container
const DefaultDebugPort = 9222

const (
	pullTimeout  = 60 * time.Second
	readyTimeout = 30 * time.Second
	stopTimeout  = 5 * time.Second
)

// ErrDockerUnavailable is returned when the docker CLI cannot reach a daemon
var ErrDockerUnavailable = errors.New("docker not available")

// DockerAvailable reports whether docker commands can be run
func DockerAvailable() bool {
	return exec.Command("docker", "version").Run() == nil
}

// TestURL returns the address Chrome inside the container uses to reach a
// server on the host. Linux runs the container on the host network; other
// platforms go through host.docker.internal.
func TestURL(port int) string {
	if runtime.GOOS == "linux" {
		return "http://localhost:" + strconv.Itoa(port)
	}
	return "http://host.docker.internal:" + strconv.Itoa(port)
}

// Container is a running chromedp/headless-shell container
type Container struct {
	Name      string
	DebugPort int

	cmd    *exec.Cmd
	logger *slog.Logger
}

// DevToolsURL is the HTTP endpoint chromedp.NewRemoteAllocator accepts
func (c *Container) DevToolsURL() string {
	return "http://localhost:" + strconv.Itoa(c.DebugPort)
}

// StartDocker pulls the headless-shell image if needed, starts it with the
// DevTools endpoint on debugPort and waits until the endpoint answers.
// A zero debugPort picks a free one. On linux the container shares the host
// network, so the endpoint is always DefaultDebugPort and any other non-zero
// debugPort is rejected.
func StartDocker(ctx context.Context, debugPort int) (*Container, error) {
	logger := gridkit.Logger()
	if !DockerAvailable() {
		return nil, ErrDockerUnavailable
	}

	debugPort, err := resolveDebugPort(runtime.GOOS, debugPort)
	if err != nil {
		return nil, err
	}

	if err := exec.CommandContext(ctx, "docker", "image", "inspect", HeadlessShellImage).Run(); err != nil {
		logger.Info("pulling chrome image", "image", HeadlessShellImage)
		pullCtx, cancel := context.WithTimeout(ctx, pullTimeout)
		defer cancel()
		if out, err := exec.CommandContext(pullCtx, "docker", "pull", HeadlessShellImage).CombinedOutput(); err != nil {
			return nil, fmt.Errorf("failed to pull %s: %w: %s", HeadlessShellImage, err, out)
		}
	}

	name := fmt.Sprintf("gridkit-chrome-%d", debugPort)
	var cmd *exec.Cmd
	if runtime.GOOS == "linux" {
		cmd = exec.Command("docker", "run", "--rm",
			"--network", "host",
			"--name", name,
			HeadlessShellImage,
		)
	} else {
		cmd = exec.Command("docker", "run", "--rm",
			"-p", fmt.Sprintf("%d:%d", debugPort, DefaultDebugPort),
			"--name", name,
			"--add-host", "host.docker.internal:host-gateway",
			HeadlessShellImage,
		)
	}

	logger.Info("starting chrome container", "name", name, "debug_port", debugPort)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start chrome container: %w", err)
	}

	c := &Container{Name: name, DebugPort: debugPort, cmd: cmd, logger: logger}
	if err := WaitReady(ctx, c.DevToolsURL(), readyTimeout); err != nil {
		c.Stop()
		return nil, err
	}
	logger.Info("chrome container ready", "name", name)
	return c, nil
}

func resolveDebugPort(goos string, debugPort int) (int, error) {
	if goos == "linux" {
		if debugPort != 0 && debugPort != DefaultDebugPort {
			return 0, fmt.Errorf("debug port %d unavailable with host networking, chrome listens on %d", debugPort, DefaultDebugPort)
		}
		return DefaultDebugPort, nil
	}
	if debugPort != 0 {
		return debugPort, nil
	}
	return gridkit.FreePort()
}

// WaitReady polls the DevTools version endpoint under baseURL until it
// answers or timeout passes.
func WaitReady(ctx context.Context, baseURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome := gridkit.RetryWithBackoff(ctx, int(timeout/(500*time.Millisecond))+1, 500*time.Millisecond, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/json/version", nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})
	if !outcome.Success {
		return fmt.Errorf("chrome failed to start within %v: %w", timeout, outcome.Err)
	}
	return nil
}

// Stop stops the container, killing it when a graceful stop hangs.
func (c *Container) Stop() error {
	if c == nil {
		return nil
	}

	var stopErr error
	out, _ := exec.Command("docker", "ps", "-a", "-q", "-f", "name="+c.Name).Output()
	if len(out) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := exec.CommandContext(ctx, "docker", "stop", "-t", "2", c.Name).Run(); err != nil {
			c.logger.Warn("docker stop failed, forcing kill", "name", c.Name, "error", err)
			if err := exec.Command("docker", "kill", c.Name).Run(); err != nil {
				stopErr = fmt.Errorf("failed to kill container %s: %w", c.Name, err)
			}
		}
	}

	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}
	return stopErr
}
