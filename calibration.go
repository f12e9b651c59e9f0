package bme280

import (
	"encoding/binary"
	"fmt"
)

// Calibration holds the factory trim constants (dig_T1..dig_H6).
type Calibration struct {
	T1 uint16 `yaml:"dig_T1"`
	T2 int16  `yaml:"dig_T2"`
	T3 int16  `yaml:"dig_T3"`

	P1 uint16 `yaml:"dig_P1"`
	P2 int16  `yaml:"dig_P2"`
	P3 int16  `yaml:"dig_P3"`
	P4 int16  `yaml:"dig_P4"`
	P5 int16  `yaml:"dig_P5"`
	P6 int16  `yaml:"dig_P6"`
	P7 int16  `yaml:"dig_P7"`
	P8 int16  `yaml:"dig_P8"`
	P9 int16  `yaml:"dig_P9"`

	H1 uint8 `yaml:"dig_H1"`
	H2 int16 `yaml:"dig_H2"`
	H3 uint8 `yaml:"dig_H3"`
	H4 int16 `yaml:"dig_H4"`
	H5 int16 `yaml:"dig_H5"`
	H6 int8  `yaml:"dig_H6"`
}

// ParseCalibration decodes the two calibration blocks: tp is read from
// RegCalib00 (CalibTPLen bytes) and h from RegCalib26 (CalibHLen bytes).
func ParseCalibration(tp, h []byte) (Calibration, error) {
	if len(tp) < CalibTPLen || len(h) < CalibHLen {
		return Calibration{}, fmt.Errorf("bme280: short calibration data (%d+%d bytes, want %d+%d)", len(tp), len(h), CalibTPLen, CalibHLen)
	}
	return parseCalibration(tp, h), nil
}

func parseCalibration(tp, h []byte) Calibration {
	le := binary.LittleEndian
	return Calibration{
		T1: le.Uint16(tp[0:]),
		T2: int16(le.Uint16(tp[2:])),
		T3: int16(le.Uint16(tp[4:])),

		P1: le.Uint16(tp[6:]),
		P2: int16(le.Uint16(tp[8:])),
		P3: int16(le.Uint16(tp[10:])),
		P4: int16(le.Uint16(tp[12:])),
		P5: int16(le.Uint16(tp[14:])),
		P6: int16(le.Uint16(tp[16:])),
		P7: int16(le.Uint16(tp[18:])),
		P8: int16(le.Uint16(tp[20:])),
		P9: int16(le.Uint16(tp[22:])),

		// tp[24] (0xA0) is reserved
		H1: tp[25],
		H2: int16(le.Uint16(h[0:])),
		H3: h[2],
		// dig_H4 is 0xE4[7:0] / 0xE5[3:0], dig_H5 is 0xE6[7:0] / 0xE5[7:4];
		// the MSB bytes are signed.
		H4: int16(int8(h[3]))*16 | int16(h[4]&0x0F),
		H5: int16(int8(h[5]))*16 | int16(h[4]>>4),
		H6: int8(h[6]),
	}
}
