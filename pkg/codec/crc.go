package codec

// CRC-16/CCITT-FALSE: x^16 + x^12 + x^5 + 1, initial value 0xFFFF, no reflection.
const (
	DefaultPoly uint16 = 0x1021
	crcInit     uint16 = 0xFFFF
)

type CRC16Checker struct {
	Poly uint16
	crc  uint16
}

func (c *CRC16Checker) Reset() {
	c.crc = crcInit
}

func (c *CRC16Checker) Update(b byte) {
	poly := c.Poly
	if poly == 0 {
		poly = DefaultPoly
	}
	c.crc ^= uint16(b) << 8
	for k := 0; k < 8; k++ {
		if c.crc&0x8000 != 0 {
			c.crc = (c.crc << 1) ^ poly
		} else {
			c.crc <<= 1
		}
	}
}

func (c *CRC16Checker) Get() uint16 {
	return c.crc
}

// Checksum resets the checker and returns the CRC of data.
func (c *CRC16Checker) Checksum(data []byte) uint16 {
	c.Reset()
	for _, b := range data {
		c.Update(b)
	}
	return c.Get()
}
