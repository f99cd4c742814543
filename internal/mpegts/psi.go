package mpegts

import (
	"errors"
	"fmt"
)

const (
	tableIDPAT = 0x00
	tableIDPMT = 0x02

	descriptorLanguage = 0x0A
)

var errShortSection = errors.New("mpegts: section too short")

// parseSections walks every section in a PSI payload that starts with a
// pointer field.
func parseSections(payload []byte) ([][]byte, error) {
	if len(payload) < 1 {
		return nil, errShortSection
	}
	offset := 1 + int(payload[0])
	if offset >= len(payload) {
		return nil, fmt.Errorf("mpegts: PSI pointer field out of range")
	}

	var sections [][]byte
	for offset+3 <= len(payload) {
		if payload[offset] == 0xFF || payload[offset+1]&0x80 == 0 {
			break
		}
		length := int(payload[offset+1]&0x0F)<<8 | int(payload[offset+2])
		end := offset + 3 + length
		if end > len(payload) {
			return sections, errShortSection
		}
		sections = append(sections, payload[offset:end])
		offset = end
	}
	return sections, nil
}

// sectionComplete reports whether a PSI payload holds all the bytes its
// first section announces.
func sectionComplete(payload []byte) bool {
	if len(payload) < 1 {
		return false
	}
	offset := 1 + int(payload[0])
	if offset+3 > len(payload) {
		return false
	}
	if payload[offset] == 0xFF {
		return true
	}
	length := int(payload[offset+1]&0x0F)<<8 | int(payload[offset+2])
	return offset+3+length <= len(payload)
}

// section layout shared by PAT and PMT:
// [0] table_id, [1-2] flags + section_length, [3-4] id,
// [5] version, [6] section_number, [7] last_section_number, ..., CRC32.
func parsePAT(section []byte) ([]PATEntry, error) {
	if len(section) < 12 {
		return nil, errShortSection
	}
	if err := verifyCRC32(section); err != nil {
		return nil, fmt.Errorf("mpegts: PAT: %w", err)
	}
	var entries []PATEntry
	for i := 8; i+4 <= len(section)-4; i += 4 {
		number := uint16(section[i])<<8 | uint16(section[i+1])
		if number == 0 {
			continue // network PID
		}
		entries = append(entries, PATEntry{
			Number: number,
			PMTPID: uint16(section[i+2]&0x1F)<<8 | uint16(section[i+3]),
		})
	}
	return entries, nil
}

func parsePMT(section []byte) (*Program, error) {
	if len(section) < 16 {
		return nil, errShortSection
	}
	if err := verifyCRC32(section); err != nil {
		return nil, fmt.Errorf("mpegts: PMT: %w", err)
	}
	prog := &Program{
		Number: uint16(section[3])<<8 | uint16(section[4]),
		PCRPID: uint16(section[8]&0x1F)<<8 | uint16(section[9]),
	}
	infoLength := int(section[10]&0x0F)<<8 | int(section[11])
	offset := 12 + infoLength
	end := len(section) - 4
	for offset+5 <= end {
		esInfoLength := int(section[offset+3]&0x0F)<<8 | int(section[offset+4])
		descEnd := min(offset+5+esInfoLength, end)
		prog.Streams = append(prog.Streams, Stream{
			Type:     section[offset],
			PID:      uint16(section[offset+1]&0x1F)<<8 | uint16(section[offset+2]),
			Language: languageDescriptor(section[offset+5 : descEnd]),
		})
		offset += 5 + esInfoLength
	}
	return prog, nil
}

func languageDescriptor(desc []byte) string {
	for len(desc) >= 2 {
		tag, length := desc[0], int(desc[1])
		if 2+length > len(desc) {
			return ""
		}
		if tag == descriptorLanguage && length >= 3 {
			return string(desc[2:5])
		}
		desc = desc[2+length:]
	}
	return ""
}
