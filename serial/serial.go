// This file is part of WashingtonDC.
//
// WashingtonDC is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// WashingtonDC is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with WashingtonDC.  If not, see <https://www.gnu.org/licenses/>.

// Package serial exposes the guest's SCIF serial port over a TCP socket.
// bytes the guest transmits are forwarded to the connected client; bytes
// the client sends are queued for the guest to read.
//
// the accept loop runs on its own goroutine. queued receive data crosses
// into the emulation thread only through Poll, which the root loop calls
// between scheduler slices.
package serial

import (
	"net"
	"sync"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// Server relays SCIF traffic over TCP. one client at a time.
type Server struct {
	cpu *sh4.SH4
	ln  net.Listener

	crit sync.Mutex
	conn net.Conn
	rx   []byte
}

// NewServer is the preferred method of initialisation for the Server type.
// the server installs itself as the CPU's serial transmit sink and starts
// listening immediately.
func NewServer(cpu *sh4.SH4, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, curated.Errorf(curated.FileIO, err)
	}

	s := &Server{
		cpu: cpu,
		ln:  ln,
	}

	cpu.SerialTx = s.tx

	go s.acceptLoop()

	logger.Logf("serial", "listening on %s", addr)
	return s, nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.crit.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.conn = conn
		s.crit.Unlock()

		go s.readLoop(conn)
	}
}

func (s *Server) readLoop(conn net.Conn) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		s.crit.Lock()
		s.rx = append(s.rx, buf[:n]...)
		s.crit.Unlock()
	}
}

// tx forwards one guest byte to the client. runs on the emulation thread.
func (s *Server) tx(b uint8) {
	s.crit.Lock()
	conn := s.conn
	s.crit.Unlock()

	if conn != nil {
		_, _ = conn.Write([]byte{b})
	}
}

// Poll moves received bytes into the CPU's SCIF receive FIFO. must be
// called from the emulation thread.
func (s *Server) Poll() {
	s.crit.Lock()
	pending := s.rx
	s.rx = nil
	s.crit.Unlock()

	if len(pending) > 0 {
		s.cpu.SerialRx(pending)
	}
}

// Close shuts the listener and any connected client down.
func (s *Server) Close() {
	s.ln.Close()

	s.crit.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.crit.Unlock()
}
