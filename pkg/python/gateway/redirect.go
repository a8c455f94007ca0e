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
	"bufio"
	"io"
	"time"

	"github.com/nuclio/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRedirectBatchSize     = 64
	defaultRedirectFlushInterval = 100 * time.Millisecond
)

// LineSink consumes one redirected output line
type LineSink func(line string)

// RedirectConfig bounds the buffering of redirected output
type RedirectConfig struct {

	// MaxBatchSize is the number of lines buffered before a flush
	MaxBatchSize int

	// FlushInterval bounds how long a non-empty batch may wait
	FlushInterval time.Duration

	// InfoSink receives stdout lines. Defaults to info-level logging
	InfoSink LineSink

	// DebugSink receives stderr lines. Defaults to debug-level logging
	DebugSink LineSink
}

// OutputRedirector continuously drains an interpreter's standard streams
// into two sinks. Stdout lines go to the info sink, stderr lines to the
// debug sink, each stream in order. Stop flushes everything before returning
type OutputRedirector struct {
	logger logger.Logger
	config RedirectConfig
	group  errgroup.Group
}

func newOutputRedirector(parentLogger logger.Logger,
	stdout io.Reader,
	stderr io.Reader,
	config RedirectConfig) *OutputRedirector {

	redirector := &OutputRedirector{
		logger: parentLogger.GetChild("redirect"),
		config: config,
	}

	if redirector.config.MaxBatchSize <= 0 {
		redirector.config.MaxBatchSize = defaultRedirectBatchSize
	}

	if redirector.config.FlushInterval <= 0 {
		redirector.config.FlushInterval = defaultRedirectFlushInterval
	}

	if redirector.config.InfoSink == nil {
		redirector.config.InfoSink = func(line string) {
			redirector.logger.Info(line)
		}
	}

	if redirector.config.DebugSink == nil {
		redirector.config.DebugSink = func(line string) {
			redirector.logger.Debug(line)
		}
	}

	redirector.redirect(stdout, redirector.config.InfoSink)
	redirector.redirect(stderr, redirector.config.DebugSink)

	return redirector
}

// redirect starts a producer goroutine reading lines into a bounded channel
// and a consumer goroutine batching them into the sink
func (r *OutputRedirector) redirect(stream io.Reader, sink LineSink) {
	lineChan := make(chan string, r.config.MaxBatchSize)

	r.group.Go(func() error {
		defer close(lineChan)

		scanner := bufio.NewScanner(stream)
		for scanner.Scan() {
			lineChan <- scanner.Text()
		}

		// the stream ends when the process dies; a read error here is the
		// normal teardown path
		return nil
	})

	r.group.Go(func() error {
		batch := make([]string, 0, r.config.MaxBatchSize)

		flush := func() {
			for _, line := range batch {
				sink(line)
			}
			batch = batch[:0]
		}
		defer flush()

		ticker := time.NewTicker(r.config.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case line, ok := <-lineChan:
				if !ok {
					return nil
				}

				batch = append(batch, line)
				if len(batch) >= r.config.MaxBatchSize {
					flush()
				}
			case <-ticker.C:
				flush()
			}
		}
	})
}

// stop waits until both streams hit EOF and all buffered lines reached their
// sinks. The caller must make the streams end (by closing the process) first
func (r *OutputRedirector) stop() error {
	return r.group.Wait()
}
