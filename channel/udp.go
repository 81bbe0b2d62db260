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
	"strconv"
	"strings"

	"github.com/SSEDev/OrientalExpress/stepcode"
)

// NewUDP builds a Channel that joins a multicast group on each reconnect
// attempt. addr has the §6 form "mcAddr:mcPort;localAddr".
func NewUDP(addr string, listener Listener) *Channel {
	return newChannel(addr, false, openUDP, listener)
}

// udpAddress holds the three fields of "mcAddr:mcPort;localAddr".
type udpAddress struct {
	mcAddr    net.IP
	mcPort    int
	localAddr net.IP
}

func parseUDPAddress(addr string) (udpAddress, error) {
	semi := strings.IndexByte(addr, ';')
	if semi < 0 {
		return udpAddress{}, stepcode.New(stepcode.InvalidAddress, "missing ';localAddr' in %q", addr)
	}
	hostPort, localPart := addr[:semi], addr[semi+1:]

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return udpAddress{}, stepcode.New(stepcode.InvalidAddress, "%q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return udpAddress{}, stepcode.New(stepcode.InvalidAddress, "%q: bad port", addr)
	}
	mc := net.ParseIP(host).To4()
	local := net.ParseIP(localPart).To4()
	if mc == nil || local == nil {
		return udpAddress{}, stepcode.New(stepcode.InvalidAddress, "%q: not dotted-decimal IPv4", addr)
	}
	return udpAddress{mcAddr: mc, mcPort: port, localAddr: local}, nil
}

func openUDP(ctx context.Context, addr string) (net.Conn, error) {
	parsed, err := parseUDPAddress(addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: parsed.mcPort})
	if err != nil {
		return nil, err
	}

	rc, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}
	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = setReuseAddrAndRcvBufFd(fd)
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := joinMulticastGroup(conn, parsed.mcAddr, parsed.localAddr); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
