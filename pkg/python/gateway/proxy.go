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
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"github.com/OlafGroth/knime-python/pkg/common"
	"github.com/OlafGroth/knime-python/pkg/python/gateway/encoder"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
)

type callResult struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`

	err error
}

type remoteLogRecord struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	With    map[string]interface{} `json:"with"`
}

type startRecord struct {
	Pid int `json:"pid"`
}

// Proxy dispatches method calls to the remote interpreter over a single
// connection. Calls are serialized; a call blocks its caller until the
// matching result record arrives or the connection dies
type Proxy struct {
	logger      logger.Logger
	callEncoder encoder.CallEncoder
	callMu      sync.Mutex
	lastCallID  uint64
	resultChan  chan *callResult
	startChan   chan startRecord
	closed      atomic.Bool
}

func newProxy(parentLogger logger.Logger, conn io.ReadWriter, newCallEncoder encoder.NewCallEncoderFunc) *Proxy {
	proxy := &Proxy{
		logger:      parentLogger.GetChild("proxy"),
		callEncoder: newCallEncoder(conn),
		resultChan:  make(chan *callResult, 1),
		startChan:   make(chan startRecord, 1),
	}

	go proxy.connOutputHandler(conn)

	return proxy
}

// Invoke calls a method on the remote interpreter and decodes its result
// into result (which may be nil when no result is expected)
func (p *Proxy) Invoke(method string, args []interface{}, result interface{}) error {
	p.callMu.Lock()
	defer p.callMu.Unlock()

	if p.closed.Load() {
		return errors.Errorf("Can't invoke %q: gateway is closed", method)
	}

	p.lastCallID++
	call := &encoder.Call{
		ID:     p.lastCallID,
		Method: method,
		Args:   args,
	}

	if call.Args == nil {
		call.Args = []interface{}{}
	}

	if err := p.callEncoder.Encode(call); err != nil {
		return errors.Wrapf(err, "Can't encode call to %q", method)
	}

	callResultInstance, ok := <-p.resultChan
	if !ok {
		return errors.Errorf("Interpreter disconnected during call to %q", method)
	}

	if callResultInstance.err != nil {
		return errors.Wrapf(callResultInstance.err, "Call to %q failed reading result", method)
	}

	if callResultInstance.ID != call.ID {
		return errors.Errorf("Mismatched result for call to %q: sent id %d, got id %d",
			method,
			call.ID,
			callResultInstance.ID)
	}

	if callResultInstance.Error != "" {
		return errors.Errorf("Remote call to %q failed: %s", method, callResultInstance.Error)
	}

	if result != nil && len(callResultInstance.Result) != 0 {
		if err := json.Unmarshal(callResultInstance.Result, result); err != nil {
			return errors.Wrapf(err, "Can't decode result of call to %q", method)
		}
	}

	return nil
}

// markClosed prevents further calls and silences read errors of the closing
// connection
func (p *Proxy) markClosed() {
	p.closed.Store(true)
}

func (p *Proxy) connOutputHandler(conn io.Reader) {

	// Close might tear the connection down under us, which closes resultChan;
	// a racing send then panics
	defer func() {
		if err := recover(); err != nil {
			p.logger.WarnWith("Panic handling interpreter output (Close called?)")
		}
	}()

	outReader := bufio.NewReader(conn)

	for {
		data, err := outReader.ReadBytes('\n')
		if err != nil {
			if p.closed.Load() {
				close(p.resultChan)
				return
			}

			p.logger.WarnWith("Failed to read from connection", "err", err)
			p.resultChan <- &callResult{err: err}
			close(p.resultChan)
			return
		}

		if len(data) < 2 {
			continue
		}

		switch data[0] {
		case 'r':
			unmarshalledResult := &callResult{}
			if unmarshalledResult.err = json.Unmarshal(data[1:], unmarshalledResult); unmarshalledResult.err != nil {
				p.resultChan <- unmarshalledResult
				continue
			}

			p.resultChan <- unmarshalledResult
		case 'l':
			p.handleRemoteLog(data[1:])
		case 's':
			p.handleStart(data[1:])
		}
	}
}

func (p *Proxy) handleRemoteLog(record []byte) {
	var logRecord remoteLogRecord

	if err := json.Unmarshal(record, &logRecord); err != nil {
		p.logger.ErrorWith("Can't decode remote log record", "error", err)
		return
	}

	logFunc := p.logger.DebugWith

	switch logRecord.Level {
	case "error", "critical", "fatal":
		logFunc = p.logger.ErrorWith
	case "warning":
		logFunc = p.logger.WarnWith
	case "info":
		logFunc = p.logger.InfoWith
	}

	vars := common.MapToSlice(logRecord.With)
	logFunc(logRecord.Message, vars...)
}

func (p *Proxy) handleStart(record []byte) {
	var start startRecord

	if err := json.Unmarshal(record, &start); err != nil {
		p.logger.ErrorWith("Can't decode start record", "error", err)
		return
	}

	select {
	case p.startChan <- start:
	default:
		p.logger.WarnWith("Duplicate start record from interpreter", "pid", start.Pid)
	}
}
