package bme280

// Register map (datasheet section 5.3).
const (
	RegCalib00   byte = 0x88 // dig_T1 LSB, start of the temperature/pressure block
	RegChipID    byte = 0xD0
	RegSoftReset byte = 0xE0
	RegCalib26   byte = 0xE1 // dig_H2 LSB, start of the humidity block
	RegCtrlHum   byte = 0xF2
	RegStatus    byte = 0xF3
	RegCtrlMeas  byte = 0xF4
	RegConfig    byte = 0xF5
	RegPressMSB  byte = 0xF7 // start of the data block
)

const (
	// ChipID is the identity byte every BME280 reports at RegChipID.
	ChipID byte = 0x60

	softResetCmd byte = 0xB6

	// CalibTPLen covers 0x88..0xA1, dig_T1 through dig_H1.
	CalibTPLen = 26
	// CalibHLen covers 0xE1..0xE7, dig_H2 through dig_H6.
	CalibHLen = 7
	// DataLen covers press_msb 0xF7 through hum_lsb 0xFE.
	DataLen = 8
)

// status register bits
const (
	statusMeasuring byte = 1 << 3
	statusImUpdate  byte = 1 << 0
)

const modeMask byte = 0x03
