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

package channel

import (
	"context"
	"net"
)

// NewTCP builds a Channel that dials addr (host:port, §6) on each
// reconnect attempt.
func NewTCP(addr string, listener Listener) *Channel {
	return newChannel(addr, true, openTCP, listener)
}

func openTCP(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Control: controlReuseAddrAndRcvBuf}
	return dialer.DialContext(ctx, "tcp4", addr)
}
