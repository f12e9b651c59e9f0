// Package bme280 drives a Bosch BME280 temperature, humidity and pressure
// sensor over any register transport.
//
// The package holds the bus independent part of the driver: the register
// protocol, the calibration parser and the compensation formulas in floating
// point and in the vendor integer form. Bus specific transports live in the
// i2c and spi subpackages.
//
// Two execution models are offered. Dev takes a context on every call and
// waits with TimerDelay, so a conversion wait parks only the calling
// goroutine and stops early on cancellation. Blocking wraps a
// BlockingTransport and sleeps on the calling goroutine.
//
// A cancelled measurement may leave a conversion running on the device. The
// next measurement triggers a new forced conversion and reads a coherent
// result.
//
// Datasheet:
// https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bme280-ds002.pdf
package bme280
