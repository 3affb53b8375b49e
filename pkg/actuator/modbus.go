package actuator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ModbusConfig configures the TCP connection to the channel driver.
type ModbusConfig struct {
	Endpoint     string
	UnitID       uint8
	Timeout      time.Duration
	RegisterBase uint16
}

// ModbusSink writes channel intensities as holding registers on a
// Modbus TCP device. Requests are serialized; the goburrow client is
// not safe for concurrent use.
type ModbusSink struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
	base    uint16
}

// NewModbusSink connects to the channel driver at cfg.Endpoint.
func NewModbusSink(cfg ModbusConfig) (*ModbusSink, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("actuator modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("actuator modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &ModbusSink{
		handler: h,
		client:  modbus.NewClient(h),
		base:    cfg.RegisterBase,
	}, nil
}

// Write implements Sink. Channel i maps to holding register base+i.
func (s *ModbusSink) Write(channel int, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.client.WriteSingleRegister(s.base+uint16(channel), uint16(value))
	return err
}

// Close implements Sink.
func (s *ModbusSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Close()
}
