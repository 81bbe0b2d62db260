/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package driver

import "github.com/SSEDev/OrientalExpress/database"

// State is the TCP session state machine from §4.6. The UDP variant has
// no state machine (§4.7: "No session state machine").
type State int

const (
	Disconnected State = iota
	Connected
	LoggingIn
	LoggedIn
	Publishing
	LoggingOut
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case LoggingIn:
		return "LoggingIn"
	case LoggedIn:
		return "LoggedIn"
	case Publishing:
		return "Publishing"
	case LoggingOut:
		return "LoggingOut"
	case LoggedOut:
		return "LoggedOut"
	default:
		return "Unknown"
	}
}

// Driver is the common surface the handle registry dispatches to,
// satisfied by both the TCP and UDP variants (§4.8).
type Driver interface {
	SetSPI(spi SPI)
	Connect(addr string) error
	Disconnect()
	Login(username, password string, heartbeatIntl int64) error
	Logout(reason string) error
	Subscribe(market database.MktType) error
	Close()
}
