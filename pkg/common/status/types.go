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

package status

import "fmt"

// Provider is something that has a status
type Provider interface {

	// SetStatus sets the entity's status
	SetStatus(Status)

	// GetStatus returns the entity's status
	GetStatus() Status
}

// Status is gateway lifecycle status
type Status int

// Status codes
const (
	Initializing Status = iota
	Ready
	Error
	Closed
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Error:
		return "error"
	case Closed:
		return "closed"
	}

	return fmt.Sprintf("Unknown status - %d", s)
}
