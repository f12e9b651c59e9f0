package spi

import (
	"tinygo.org/x/drivers"
)

// Pin is a chip select line; machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// NewTinyGo returns a Transport on a tinygo SPI bus. The bus must be
// configured for mode 0 or 3. cs is driven low for every transaction; pass
// nil when the bus asserts chip select itself.
func NewTinyGo(bus drivers.SPI, cs Pin) *Transport {
	if cs == nil {
		return NewTransport(bus)
	}
	cs.High()
	return NewTransport(selected{bus: bus, cs: cs})
}

type selected struct {
	bus drivers.SPI
	cs  Pin
}

func (s selected) Tx(w, r []byte) error {
	s.cs.Low()
	defer s.cs.High()
	return s.bus.Tx(w, r)
}
