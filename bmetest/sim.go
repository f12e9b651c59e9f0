// Package bmetest provides a simulated BME280 register file for tests and
// for running the tooling without hardware.
package bmetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/bme280"
)

// Calibration bytes of a real part, as read from 0x88..0xA1 and 0xE1..0xE7.
var (
	CalibTP = []byte{
		0x70, 0x6B, 0x43, 0x67, 0x18, 0xFC, // T1..T3
		0x7D, 0x8E, 0x43, 0xD6, 0xD0, 0x0B, 0x27, 0x0B, 0x8C, 0x00, // P1..P5
		0xF9, 0xFF, 0x8C, 0x3C, 0xF8, 0xC6, 0x70, 0x17, // P6..P9
		0x00, 0x4B, // reserved, H1
	}
	CalibH = []byte{0x6A, 0x01, 0x00, 0x13, 0x29, 0x03, 0x1E}
)

// A reading of 25.08 °C, 100653.25 Pa and 55.00 %RH with CalibTP/CalibH.
var DefaultRaw = bme280.RawMeasurement{
	Pressure:    415148,
	Temperature: 519888,
	Humidity:    30000,
}

type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// Access is one recorded transport call. Value is the written byte for
// writes; Len is the burst length for reads.
type Access struct {
	Op    Op
	Reg   byte
	Value byte
	Len   int
}

var _ bme280.Transport = &Sim{}

// Sim answers register reads and writes the way the device does: soft reset
// clears the control registers and a forced mode write completes the
// conversion at once and drops back to sleep.
type Sim struct {
	mx       sync.Mutex
	regs     [256]byte
	raw      bme280.RawMeasurement
	accesses []Access
	fail     map[byte]error
	readFail map[byte]error
	conv     int
}

func NewSim() *Sim {
	s := &Sim{
		fail:     map[byte]error{},
		readFail: map[byte]error{},
	}
	s.regs[bme280.RegChipID] = bme280.ChipID
	copy(s.regs[bme280.RegCalib00:], CalibTP)
	copy(s.regs[bme280.RegCalib26:], CalibH)
	s.SetRaw(DefaultRaw)
	return s
}

// SetChipID overrides the identity register.
func (s *Sim) SetChipID(id byte) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.regs[bme280.RegChipID] = id
}

// SetCalibration replaces both calibration blocks.
func (s *Sim) SetCalibration(tp, h []byte) {
	s.mx.Lock()
	defer s.mx.Unlock()
	copy(s.regs[bme280.RegCalib00:bme280.RegCalib00+bme280.CalibTPLen], tp)
	copy(s.regs[bme280.RegCalib26:bme280.RegCalib26+bme280.CalibHLen], h)
}

// SetRaw sets the ADC words the next conversion produces.
func (s *Sim) SetRaw(raw bme280.RawMeasurement) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.raw = raw
	s.latch()
}

// FailWrite makes every write to reg return err; nil clears it.
func (s *Sim) FailWrite(reg byte, err error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err == nil {
		delete(s.fail, reg)
		return
	}
	s.fail[reg] = err
}

// FailRead makes every read starting at reg return err; nil clears it.
func (s *Sim) FailRead(reg byte, err error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err == nil {
		delete(s.readFail, reg)
		return
	}
	s.readFail[reg] = err
}

// Register returns the current value of reg without recording an access.
func (s *Sim) Register(reg byte) byte {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.regs[reg]
}

// Accesses returns a copy of the recorded calls.
func (s *Sim) Accesses() []Access {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]Access(nil), s.accesses...)
}

// Writes returns the recorded writes in order.
func (s *Sim) Writes() []Access {
	var out []Access
	for _, a := range s.Accesses() {
		if a.Op == OpWrite {
			out = append(out, a)
		}
	}
	return out
}

// Touched reports whether any recorded access covered reg.
func (s *Sim) Touched(reg byte) bool {
	for _, a := range s.Accesses() {
		n := max(a.Len, 1)
		if reg >= a.Reg && int(reg) < int(a.Reg)+n {
			return true
		}
	}
	return false
}

// Conversions counts the forced conversions triggered so far.
func (s *Sim) Conversions() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.conv
}

func (s *Sim) Reset() {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.accesses = nil
	s.conv = 0
}

func (s *Sim) ReadRegister(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	if err := s.ReadRegisters(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *Sim) ReadRegisters(ctx context.Context, reg byte, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	s.accesses = append(s.accesses, Access{Op: OpRead, Reg: reg, Len: len(buf)})
	if err, ok := s.readFail[reg]; ok {
		return err
	}
	if int(reg)+len(buf) > len(s.regs) {
		return fmt.Errorf("read past register file: %#02x+%d", reg, len(buf))
	}
	copy(buf, s.regs[reg:])
	return nil
}

func (s *Sim) WriteRegister(ctx context.Context, reg byte, value byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	s.accesses = append(s.accesses, Access{Op: OpWrite, Reg: reg, Value: value})
	if err, ok := s.fail[reg]; ok {
		return err
	}
	switch reg {
	case bme280.RegSoftReset:
		if value == 0xB6 {
			s.regs[bme280.RegCtrlHum] = 0
			s.regs[bme280.RegCtrlMeas] = 0
			s.regs[bme280.RegConfig] = 0
		}
	case bme280.RegCtrlMeas:
		s.regs[reg] = value
		switch value & 0x03 {
		case 0x01, 0x02:
			s.conv++
			s.latch()
			// back to sleep once the conversion is done
			s.regs[reg] = value &^ 0x03
		case 0x03:
			s.latch()
		}
	case bme280.RegCtrlHum, bme280.RegConfig:
		s.regs[reg] = value
	default:
		// read-only register
	}
	return nil
}

// Blocking returns the simulator as a bme280.BlockingTransport.
func (s *Sim) Blocking() bme280.BlockingTransport {
	return blocking{s: s}
}

type blocking struct {
	s *Sim
}

func (b blocking) ReadRegister(reg byte) (byte, error) {
	return b.s.ReadRegister(context.Background(), reg)
}

func (b blocking) ReadRegisters(reg byte, buf []byte) error {
	return b.s.ReadRegisters(context.Background(), reg, buf)
}

func (b blocking) WriteRegister(reg byte, value byte) error {
	return b.s.WriteRegister(context.Background(), reg, value)
}

func (s *Sim) latch() {
	d := s.regs[bme280.RegPressMSB:]
	d[0] = byte(s.raw.Pressure >> 12)
	d[1] = byte(s.raw.Pressure >> 4)
	d[2] = byte(s.raw.Pressure<<4) & 0xF0
	d[3] = byte(s.raw.Temperature >> 12)
	d[4] = byte(s.raw.Temperature >> 4)
	d[5] = byte(s.raw.Temperature<<4) & 0xF0
	d[6] = byte(s.raw.Humidity >> 8)
	d[7] = byte(s.raw.Humidity)
}
