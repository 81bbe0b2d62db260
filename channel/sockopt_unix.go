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

//go:build unix

// net.Dialer/net.ListenConfig have no portable way to join an IPv4
// multicast group on an explicit local interface, nor to size SO_RCVBUF
// before the kernel's own doubling heuristic kicks in. Both require
// reaching past the net package into the raw file descriptor, which is
// why this file exists instead of a pure net.Dialer{Control: ...} one-liner.
package channel

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddrAndRcvBuf is a net.Dialer/net.ListenConfig Control hook
// that sets SO_REUSEADDR and a SocketRcvBuf-sized SO_RCVBUF before the
// socket connects or binds, per §4.5's "Open (TCP)"/"Open (UDP)" steps.
func controlReuseAddrAndRcvBuf(_, _ string, rc syscall.RawConn) error {
	var opErr error
	err := rc.Control(func(fd uintptr) {
		opErr = setReuseAddrAndRcvBufFd(fd)
	})
	if err != nil {
		return err
	}
	return opErr
}

// setReuseAddrAndRcvBufFd sets SO_REUSEADDR and a SocketRcvBuf-sized
// SO_RCVBUF directly on an already-open file descriptor, for callers (the
// UDP opener) that need to run this after ListenUDP rather than as a
// Dialer/ListenConfig Control hook.
func setReuseAddrAndRcvBufFd(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return err
	}
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, SocketRcvBuf)
}

// joinMulticastGroup issues IP_ADD_MEMBERSHIP on conn's underlying socket,
// binding the subscription to localAddr as the source interface.
func joinMulticastGroup(conn *net.UDPConn, mcAddr, localAddr net.IP) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	mreq := &unix.IPMreq{}
	copy(mreq.Multiaddr[:], mcAddr.To4())
	copy(mreq.Interface[:], localAddr.To4())

	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = unix.SetsockoptIPMreq(int(fd), unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
	})
	if err != nil {
		return err
	}
	return opErr
}
