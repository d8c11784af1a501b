// Package logger is the task that owns the HAL logger. Every other task logs
// by sending MsgLogLine to its endpoint.
package logger

import (
	logclient "inkpad/client/logger"
	"inkpad/hal"
	"inkpad/kernel"
	"inkpad/proto"
)

type Service struct {
	log hal.Logger
	ep  kernel.Capability
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Run(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			break
		}
		s.write(&msg)
	}
	// Flush what was queued before shutdown.
	for {
		msg, ok := ctx.TryRecv(s.ep)
		if !ok {
			return
		}
		s.write(&msg)
	}
}

func (s *Service) write(msg *kernel.Message) {
	if s.log == nil || msg.Kind != uint16(proto.MsgLogLine) {
		return
	}
	lvl, line, ok := proto.DecodeLogLinePayload(msg.Payload())
	if !ok {
		return
	}
	if ll, ok := s.log.(hal.LevelLogger); ok {
		ll.WriteLevel(logclient.ToHAL(lvl), string(line))
		return
	}
	s.log.WriteLineBytes(line)
}
