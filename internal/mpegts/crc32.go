package mpegts

import "errors"

var errCRC = errors.New("mpegts: CRC32 mismatch")

// MPEG-2 CRC32, polynomial 0x04C11DB7, not reflected.
var crcTable [256]uint32

func init() {
	for i := range crcTable {
		crc := uint32(i) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// CRC32 returns the PSI section checksum of data.
func CRC32(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

func verifyCRC32(section []byte) error {
	if len(section) < 4 {
		return errCRC
	}
	if CRC32(section) != 0 {
		return errCRC
	}
	return nil
}
