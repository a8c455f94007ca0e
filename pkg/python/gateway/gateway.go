/*
Copyright 2024 The KNIME Python Gateway Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/OlafGroth/knime-python/pkg/common"
	"github.com/OlafGroth/knime-python/pkg/common/status"
	"github.com/OlafGroth/knime-python/pkg/python"
	"github.com/OlafGroth/knime-python/pkg/python/gateway/encoder"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
)

// TODO: Find a better place (both on file system and configuration)
const (
	socketPathTemplate = "/tmp/knime-python-gateway-%s.sock"
	connectionTimeout  = 10 * time.Second
)

// SocketType is type of socket to use
type SocketType int

// Gateway socket types
const (
	UnixSocket SocketType = iota
	TCPSocket
)

// ErrStartupInterrupted reports that gateway startup was interrupted before
// the handshake completed
var ErrStartupInterrupted = errors.New("Python gateway startup interrupted")

// Config configures a gateway
type Config struct {

	// Command locates the interpreter. Required
	Command *python.Command

	// LauncherPath is the Python launcher script imported by the child
	// process. When empty, the embedded launcher is materialized to a
	// temporary file
	LauncherPath string

	// PythonPath holds the module roots exposed as PYTHONPATH
	PythonPath *python.Path

	// Extensions are imported in order, each exactly once, right after the
	// handshake
	Extensions []python.Extension

	// SocketType selects unix or TCP transport. Unix by default
	SocketType SocketType

	// Encoding selects the call wire encoding. JSON by default
	Encoding encoder.Kind

	// Redirect bounds the output redirection buffering
	Redirect RedirectConfig

	// LaunchFunc overrides how the interpreter process is started. The
	// returned process must make something connect to the given address and
	// speak the gateway protocol. Used by tests and embedders; when set,
	// Command, LauncherPath and Redirect are ignored
	LaunchFunc func(address string) (*os.Process, error)
}

// Gateway owns one child interpreter process, the entry-point proxy bound to
// it and the redirection of its standard streams. The entry point is valid
// only while the process is alive; no operation is defined after Close
type Gateway[E EntryPoint] struct {
	logger     logger.Logger
	config     Config
	proxy      *Proxy
	entryPoint E
	process    *os.Process
	cmd        *exec.Cmd
	listener   net.Listener
	socketPath string
	conn       net.Conn
	redirector *OutputRedirector
	tempDir    string

	statusMu sync.Mutex
	status   status.Status

	closeOnce sync.Once
	closeErr  error
}

// Open starts a child interpreter process, imports the launcher, binds a
// remote-invocable entry point created by newEntryPoint and returns once the
// handshake completed and all extensions are registered.
//
// Failures to spawn or connect surface as I/O errors; ctx cancellation
// during startup surfaces as ErrStartupInterrupted. Either way no process is
// left behind
func Open[E EntryPoint](ctx context.Context,
	parentLogger logger.Logger,
	config Config,
	newEntryPoint func(*Proxy) E) (*Gateway[E], error) {

	if config.Command == nil && config.LaunchFunc == nil {
		return nil, errors.New("Gateway config requires a Python command")
	}

	gateway := &Gateway[E]{
		logger: parentLogger.GetChild("gateway"),
		config: config,
		status: status.Initializing,
	}

	if err := gateway.start(ctx, newEntryPoint); err != nil {
		gateway.SetStatus(status.Error)
		gateway.teardown()
		return nil, err
	}

	gateway.SetStatus(status.Ready)

	return gateway, nil
}

// EntryPoint returns the remote entry point
func (g *Gateway[E]) EntryPoint() E {
	return g.entryPoint
}

// Pid returns the process identifier of the spawned interpreter
func (g *Gateway[E]) Pid() int {
	return g.process.Pid
}

// Alive reports whether the interpreter process is still running
func (g *Gateway[E]) Alive() bool {
	processInstance, err := process.NewProcess(int32(g.process.Pid))
	if err != nil {
		return false
	}

	running, err := processInstance.IsRunning()
	return err == nil && running
}

// SetStatus sets the gateway's status
func (g *Gateway[E]) SetStatus(s status.Status) {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	g.status = s
}

// GetStatus returns the gateway's status
func (g *Gateway[E]) GetStatus() status.Status {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	return g.status
}

// Close releases the process, the connection and the redirection goroutines.
// It is idempotent; repeated calls return the first result. Safe to defer
// right after Open
func (g *Gateway[E]) Close() error {
	g.closeOnce.Do(func() {
		g.logger.DebugWith("Closing gateway", "pid", g.process.Pid)
		g.closeErr = g.teardown()
		g.SetStatus(status.Closed)
	})

	return g.closeErr
}

func (g *Gateway[E]) start(ctx context.Context, newEntryPoint func(*Proxy) E) error {
	var err error

	var listener net.Listener
	var address string

	if g.config.SocketType == UnixSocket {
		listener, address, err = g.createUnixListener()
	} else {
		listener, address, err = g.createTCPListener()
	}

	if err != nil {
		return errors.Wrap(err, "Can't create listener")
	}
	g.listener = listener

	if g.config.LaunchFunc != nil {
		launchedProcess, err := g.config.LaunchFunc(address)
		if err != nil {
			return errors.Wrap(err, "Can't run launcher")
		}
		g.process = launchedProcess
	} else {
		launcherPath, err := g.resolveLauncherPath()
		if err != nil {
			return errors.Wrap(err, "Can't resolve launcher path")
		}

		if err := g.runLauncher(launcherPath, address); err != nil {
			return errors.Wrap(err, "Can't run launcher")
		}
	}

	conn, err := g.accept(ctx, listener)
	if err != nil {
		return err
	}
	g.conn = conn

	g.logger.InfoWith("Interpreter connected", "address", address)

	g.proxy = newProxy(g.logger, conn, g.resolveCallEncoderFunc())

	if err := g.waitForStart(ctx); err != nil {
		return err
	}

	g.entryPoint = newEntryPoint(g.proxy)

	if len(g.config.Extensions) != 0 {
		moduleNames := make([]string, 0, len(g.config.Extensions))
		for _, extension := range g.config.Extensions {
			moduleNames = append(moduleNames, extension.ModuleName())
		}

		g.logger.DebugWith("Registering extensions", "modules", moduleNames)

		if err := g.entryPoint.RegisterExtensions(moduleNames); err != nil {
			return errors.Wrap(err, "Can't register extensions")
		}
	}

	return nil
}

func (g *Gateway[E]) runLauncher(launcherPath string, address string) error {
	command := g.config.Command

	if !common.IsFile(command.ExecutablePath()) {
		if _, err := exec.LookPath(command.ExecutablePath()); err != nil {
			return errors.Errorf("Can't find Python executable at %q", command.ExecutablePath())
		}
	}

	if !common.IsFile(launcherPath) {
		return errors.Errorf("Can't find launcher at %q", launcherPath)
	}

	// pass global environment onto the process, and sprinkle in the
	// command's overrides
	env := os.Environ()
	env = append(env, common.MapStringToEnviron(command.Env())...)
	if g.config.PythonPath != nil && g.config.PythonPath.Len() != 0 {
		envPath := fmt.Sprintf("PYTHONPATH=%s", g.config.PythonPath.String())
		g.logger.DebugWith("Setting PYTHONPATH", "value", envPath)
		env = append(env, envPath)
	}

	args := []string{
		command.ExecutablePath(), "-u", launcherPath,
		"--address", address,
		"--encoding", string(g.resolveEncoding()),
	}

	g.logger.DebugWith("Running launcher", "args", args)

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "Can't pipe stdout")
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "Can't pipe stderr")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "Can't start interpreter process %q", command.ExecutablePath())
	}

	g.cmd = cmd
	g.process = cmd.Process
	g.redirector = newOutputRedirector(g.logger, stdout, stderr, g.config.Redirect)

	return nil
}

func (g *Gateway[E]) accept(ctx context.Context, listener net.Listener) (net.Conn, error) {
	type acceptResult struct {
		conn net.Conn
		err  error
	}

	acceptChan := make(chan acceptResult, 1)
	go func() {
		conn, err := listener.Accept()
		acceptChan <- acceptResult{conn: conn, err: err}
	}()

	select {
	case result := <-acceptChan:
		if result.err != nil {
			return nil, errors.Wrap(result.err, "Can't get connection from interpreter")
		}
		return result.conn, nil
	case <-ctx.Done():
		listener.Close() // nolint: errcheck
		return nil, errors.Wrap(ErrStartupInterrupted, ctx.Err().Error())
	}
}

func (g *Gateway[E]) waitForStart(ctx context.Context) error {
	g.logger.Debug("Waiting for start")

	select {
	case start := <-g.proxy.startChan:
		g.logger.DebugWith("Interpreter started", "remotePid", start.Pid)
		return nil
	case <-time.After(connectionTimeout):
		return errors.New("Timed out waiting for interpreter start")
	case <-ctx.Done():
		return errors.Wrap(ErrStartupInterrupted, ctx.Err().Error())
	}
}

// Create a listener on a unix domain socket, return listener, path to socket
// and error
func (g *Gateway[E]) createUnixListener() (net.Listener, string, error) {
	socketPath := fmt.Sprintf(socketPathTemplate, xid.New().String())

	if common.FileExists(socketPath) {
		if err := os.Remove(socketPath); err != nil {
			return nil, "", errors.Wrapf(err, "Can't remove socket at %q", socketPath)
		}
	}

	g.logger.DebugWith("Creating listener socket", "path", socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, "", errors.Wrapf(err, "Can't listen on %s", socketPath)
	}

	unixListener, ok := listener.(*net.UnixListener)
	if !ok {
		return nil, "", errors.New("Can't get underlying Unix listener")
	}
	if err = unixListener.SetDeadline(time.Now().Add(connectionTimeout)); err != nil {
		return nil, "", errors.Wrap(err, "Can't set deadline")
	}

	g.socketPath = socketPath

	return listener, socketPath, nil
}

// Create a listener on TCP, return listener, address and error
func (g *Gateway[E]) createTCPListener() (net.Listener, string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", errors.Wrap(err, "Can't find free port")
	}

	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return nil, "", errors.New("Can't get underlying TCP listener")
	}
	if err = tcpListener.SetDeadline(time.Now().Add(connectionTimeout)); err != nil {
		return nil, "", errors.Wrap(err, "Can't set deadline")
	}

	port := listener.Addr().(*net.TCPAddr).Port

	return listener, fmt.Sprintf("%d", port), nil
}

func (g *Gateway[E]) resolveEncoding() encoder.Kind {
	if g.config.Encoding == "" {
		return encoder.JSONKind
	}

	return g.config.Encoding
}

func (g *Gateway[E]) resolveCallEncoderFunc() encoder.NewCallEncoderFunc {
	if g.resolveEncoding() == encoder.MsgPackKind {
		return func(writer io.Writer) encoder.CallEncoder {
			return encoder.NewCallMsgPackEncoder(g.logger, writer)
		}
	}

	return func(writer io.Writer) encoder.CallEncoder {
		return encoder.NewCallJSONEncoder(g.logger, writer)
	}
}

func (g *Gateway[E]) resolveLauncherPath() (string, error) {
	if g.config.LauncherPath != "" {
		return g.config.LauncherPath, nil
	}

	if launcherPath := ResolveLauncherPath(); launcherPath != "" {
		return launcherPath, nil
	}

	tempDir, err := os.MkdirTemp("", "knime-python-launcher-")
	if err != nil {
		return "", errors.Wrap(err, "Can't create launcher temp dir")
	}
	g.tempDir = tempDir

	launcherPath, err := MaterializeLauncher(tempDir)
	if err != nil {
		return "", err
	}

	return launcherPath, nil
}

func (g *Gateway[E]) teardown() error {
	var teardownErr error

	if g.proxy != nil {
		g.proxy.markClosed()
	}

	if g.conn != nil {
		g.conn.Close() // nolint: errcheck
	}

	if g.process != nil {
		if err := g.process.Kill(); err != nil && g.Alive() {
			teardownErr = errors.Wrap(err, "Can't kill interpreter process")
		}
	}

	// drain the pipes to EOF before reaping: Wait closes the parent pipe
	// ends, dropping whatever the child wrote that wasn't read yet
	if g.redirector != nil {
		if err := g.redirector.stop(); err != nil && teardownErr == nil {
			teardownErr = errors.Wrap(err, "Can't stop output redirection")
		}
	}

	// reap the dead child so it doesn't linger as a zombie
	if g.cmd != nil {
		g.cmd.Wait() // nolint: errcheck
	} else if g.process != nil {
		g.process.Wait() // nolint: errcheck
	}

	if g.listener != nil {
		g.listener.Close() // nolint: errcheck
	}

	if g.socketPath != "" {
		os.Remove(g.socketPath) // nolint: errcheck
	}

	if g.tempDir != "" {
		os.RemoveAll(g.tempDir) // nolint: errcheck
	}

	return teardownErr
}
