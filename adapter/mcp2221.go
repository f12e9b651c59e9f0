// Package adapter provides USB to I²C bridges usable as a bme280.I2CBus on
// hosts without a native bus.
package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
	"github.com/mklimuk/bme280"
	"github.com/mklimuk/bme280/snsctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

// MCP2221 HID commands
const (
	cmdStatusSetParams    = 0x10
	cmdI2CWriteData       = 0x90
	cmdI2CWriteDataNoStop = 0x94
	cmdI2CReadData        = 0x91
	cmdI2CReadDataRestart = 0x93
	cmdI2CGetData         = 0x40
)

const (
	reportSize = 64
	// payload bytes per HID report
	maxChunk = reportSize - 4
	// system clock the speed divider applies to
	clockHz = 12_000_000
)

var ErrCommandFailed = errors.New("command failed")
var ErrNotFound = errors.New("MCP2221 device not found")

var _ bme280.I2CBus = &MCP2221{}
var _ bme280.I2CTx = &MCP2221{}

// MCP2221 drives a Microchip MCP2221(A) over USB HID. Every command opens
// the device, sends one 64-byte report and reads one back.
type MCP2221 struct {
	mx           sync.Mutex
	index        int
	request      []byte
	response     []byte
	responseWait time.Duration
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

type MCP2221Opt func(*MCP2221)

// WithDeviceIndex picks one of several attached bridges in enumeration order.
func WithDeviceIndex(i int) MCP2221Opt {
	return func(d *MCP2221) {
		d.index = i
	}
}

func WithResponseWait(wait time.Duration) MCP2221Opt {
	return func(d *MCP2221) {
		d.responseWait = wait
	}
}

func NewMCP2221(opts ...MCP2221Opt) *MCP2221 {
	d := &MCP2221{
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init checks the bridge is attached and cancels any transfer left pending
// by a previous user.
func (d *MCP2221) Init(ctx context.Context) error {
	if !hid.Supported() {
		return fmt.Errorf("hid is not supported on this platform")
	}
	st, err := d.ReleaseBus(ctx)
	if err != nil {
		return fmt.Errorf("could not reset i2c engine: %w", err)
	}
	snsctx.Logger(ctx).Debug("mcp2221 ready", "speed_divider", st.I2CSpeedDivider, "timeout", st.I2CTimeout)
	return nil
}

// SetSpeed sets the I²C clock in Hz (the bridge supports 47 kHz to 400 kHz).
func (d *MCP2221) SetSpeed(ctx context.Context, hz int) error {
	if hz < 47_000 || hz > 400_000 {
		return fmt.Errorf("unsupported i2c speed %d", hz)
	}
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParams
	d.request[3] = 0x20
	d.request[4] = byte(clockHz/hz - 3)
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("set speed request failed: %w", err)
	}
	if d.response[3] != 0x20 {
		return fmt.Errorf("speed not accepted (transfer in progress): %w", ErrCommandFailed)
	}
	return nil
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.write(ctx, cmdI2CWriteData, address, buffer)
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.read(ctx, cmdI2CReadData, address, buffer)
}

// TxToAddr writes w without a stop condition and reads r after a repeated
// start.
func (d *MCP2221) TxToAddr(ctx context.Context, address byte, w, r []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if len(r) == 0 {
		return d.write(ctx, cmdI2CWriteData, address, w)
	}
	if err := d.write(ctx, cmdI2CWriteDataNoStop, address, w); err != nil {
		return err
	}
	return d.read(ctx, cmdI2CReadDataRestart, address, r)
}

func (d *MCP2221) write(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxChunk {
		return fmt.Errorf("write of %d bytes exceeds a single report", len(buffer))
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	if d.response[1] == 0x01 {
		snsctx.Logger(ctx).Debug("adapter busy", "address", address)
		return bme280.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) read(ctx context.Context, cmd byte, address byte, buffer []byte) error {
	if len(buffer) > maxChunk {
		return fmt.Errorf("read of %d bytes exceeds a single report", len(buffer))
	}
	d.resetBuffers()
	d.request[0] = cmd
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	if d.response[1] == 0x01 {
		return bme280.ErrBusBusy
	}
	d.resetBuffers()
	d.request[0] = cmdI2CGetData
	err = d.send(ctx)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParams
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	// 9-10 requested transfer length, 11-12 transferred length, 13 buffer
	// counter, 14 speed divider, 15 timeout, 16-17 address, 25 read pending
	status := &MCP2221Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

// Release cancels the current I²C transfer so the engine accepts new ones.
func (d *MCP2221) Release(ctx context.Context) error {
	_, err := d.ReleaseBus(ctx)
	return err
}

func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSetParams
	d.request[2] = 0x10
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("cancel request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func (d *MCP2221) open() (*hid.Device, error) {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return nil, ErrNotFound
	}
	if d.index >= len(devs) {
		return nil, fmt.Errorf("no device with index %d (%d attached)", d.index, len(devs))
	}
	dev, err := devs[d.index].Open()
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}

func (d *MCP2221) send(ctx context.Context) error {
	dev, err := d.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = dev.Close()
	}()
	log := snsctx.Logger(ctx)
	verbose := snsctx.IsVerbose(ctx)
	if verbose {
		log.Debug("sending message to adapter", "dump", "\n"+hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	timer := time.NewTimer(d.responseWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		log.Debug("read message from adapter", "dump", "\n"+hex.Dump(d.response))
	}
	return nil
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}
