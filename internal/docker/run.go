package docker

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

type RunOptions struct {
	Image   string
	Cmd     []string
	Volumes map[string]string // host:container, mounted read-only
	WorkDir string
}

// containerConfig builds the create request for opts. Binds are sorted by host path.
func containerConfig(opts RunOptions) (*container.Config, *container.HostConfig) {
	config := &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Cmd,
		WorkingDir: opts.WorkDir,
	}

	hostConfig := &container.HostConfig{}
	for _, host := range slices.Sorted(maps.Keys(opts.Volumes)) {
		hostConfig.Binds = append(hostConfig.Binds, fmt.Sprintf("%s:%s:ro", host, opts.Volumes[host]))
	}

	return config, hostConfig
}

// Run runs a container to completion and returns its standard output.
func (c *Client) Run(ctx context.Context, opts RunOptions) (output string, err error) {
	config, hostConfig := containerConfig(opts)

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	containerID := resp.ID

	defer func() {
		if rmErr := c.cli.ContainerRemove(context.WithoutCancel(ctx), containerID, container.RemoveOptions{Force: true}); rmErr != nil {
			c.logger.With("container", containerID).With("err", rmErr.Error()).Warn("failed to remove container")
		}
	}()

	attachResp, err := c.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
	}()

	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := c.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("error waiting for container: %w", err)
		}
	case status := <-statusCh:
		<-copied
		if status.StatusCode != 0 {
			if stderr.Len() > 0 {
				return "", fmt.Errorf("container exited with code %d: %s", status.StatusCode, stderr.String())
			}
			return "", fmt.Errorf("container exited with code %d", status.StatusCode)
		}
	}

	return stdout.String(), nil
}
