// server/server.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/rpc"
	"strconv"

	"github.com/mmp/airsep/log"
	"github.com/mmp/airsep/util"
)

// Version history
// 1: initial Airspace service
const AirsepRPCVersion = 1

const (
	DefaultRPCPort  = 8470
	DefaultHTTPPort = 6502
)

// Server accepts RPC connections for an Airspace. Each connection is
// flate-compressed and uses msgpack-encoded messages.
type Server struct {
	rpc      *rpc.Server
	listener net.Listener
	port     int
	lg       *log.Logger
}

// NewServer starts listening on the given port; if port is 0, an open
// one is chosen.
func NewServer(port int, airspace *Airspace, lg *log.Logger) (*Server, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	s := &Server{
		rpc:      rpc.NewServer(),
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		lg:       lg,
	}
	if err := s.rpc.RegisterName("Airspace", airspace); err != nil {
		listener.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) Port() int {
	return s.port
}

// Serve accepts connections until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	s.lg.Info("listening", slog.Int("port", s.port))

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.lg.Errorf("Accept error: %v", err)
			continue
		}

		s.lg.Infof("%s: new connection", conn.RemoteAddr())
		if cc, err := util.MakeCompressedConn(util.MakeLoggingConn(conn, s.lg)); err != nil {
			s.lg.Errorf("MakeCompressedConn: %v", err)
			conn.Close()
		} else {
			codec := util.MakeMessagepackServerCodec(cc, s.lg)
			codec = util.MakeLoggingServerCodec(conn.RemoteAddr().String(), codec, s.lg)
			go s.rpc.ServeCodec(codec)
		}
	}
}
