// Package spi carries BME280 register access over 4-wire SPI.
//
// Only seven address bits travel on the wire: bit 7 of the control byte is
// the direction, set for a read and cleared for a write. Reads auto-increment
// the register address; writes are sent one register at a time.
package spi

import (
	"fmt"

	"github.com/mklimuk/bme280"
)

const readBit = 0x80

// ReadAddress is the control byte that starts a read at reg.
func ReadAddress(reg byte) byte {
	return reg | readBit
}

// WriteAddress is the control byte that writes reg.
func WriteAddress(reg byte) byte {
	return reg &^ readBit
}

// Duplex is a full-duplex SPI connection with chip select handled per
// transaction. periph.io spi.Conn and tinygo drivers.SPI both satisfy it.
type Duplex interface {
	Tx(w, r []byte) error
}

var _ bme280.BlockingTransport = &Transport{}

// Transport clocks register transactions over a Duplex connection.
type Transport struct {
	conn Duplex
	w, r []byte
}

func NewTransport(conn Duplex) *Transport {
	return &Transport{
		conn: conn,
		w:    make([]byte, bme280.CalibTPLen+1),
		r:    make([]byte, bme280.CalibTPLen+1),
	}
}

func (t *Transport) ReadRegister(reg byte) (byte, error) {
	var buf [1]byte
	if err := t.ReadRegisters(reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadRegisters sends the read address followed by len(buf) dummy bytes and
// keeps what the device clocks out after the address.
func (t *Transport) ReadRegisters(reg byte, buf []byte) error {
	n := len(buf) + 1
	if cap(t.w) < n {
		t.w = make([]byte, n)
		t.r = make([]byte, n)
	}
	w, r := t.w[:n], t.r[:n]
	clear(w)
	w[0] = ReadAddress(reg)
	if err := t.conn.Tx(w, r); err != nil {
		return fmt.Errorf("spi read %#02x: %w", reg, err)
	}
	copy(buf, r[1:])
	return nil
}

func (t *Transport) WriteRegister(reg byte, value byte) error {
	w, r := t.w[:2], t.r[:2]
	w[0], w[1] = WriteAddress(reg), value
	if err := t.conn.Tx(w, r); err != nil {
		return fmt.Errorf("spi write %#02x: %w", reg, err)
	}
	return nil
}
