package rpc

import (
	"errors"
)

// Deprecated: the daemon wires its service through the composition packages;
// build one there and pass it to NewServerWithService.
// noinspection GoUnusedExportedFunction
func NewServer() *Server {
	return &Server{initErr: errors.New("NewServer can no longer build a service; use NewServerWithService")}
}

// Deprecated: the listen address travels with the service now; use NewServerWithService.
// noinspection GoUnusedExportedFunction
func NewServerWithAddr(rpcAddr string) *Server {
	_ = rpcAddr
	return &Server{initErr: errors.New("NewServerWithAddr can no longer build a service; use NewServerWithService")}
}

// Deprecated: config and data-dir handling moved behind the service
// constructor; use NewServerWithService.
// noinspection GoUnusedExportedFunction
func NewServerWithOptions(rpcAddr, configPath, dataDir string) *Server {
	_, _, _ = rpcAddr, configPath, dataDir
	return &Server{initErr: errors.New("NewServerWithOptions can no longer build a service; use NewServerWithService")}
}
