package mangle

import "github.com/onerom/onerom/internal/hardware"

// FillByte is the value stored at any table index that no activating
// tuple reaches.
const FillByte = 0xAA

// MangleByte permutes a logical data byte into its GPIO-port
// representation: bit j of b, for each used data pin D[j], is placed at
// bit (D[j] mod 8) of the result. The mod-8 projection matters only on
// pin maps whose data pins live above bit 7 of their own GPIO port.
func MangleByte(pm *hardware.PinMap, dataBits int, b uint16) byte {
	var out byte
	for j := 0; j < dataBits && j < 8; j++ {
		if b&(1<<uint(j)) == 0 {
			continue
		}
		p := pm.DataPin(j)
		if !p.Used() {
			continue
		}
		out |= 1 << uint(p.Index%8)
	}
	return out
}

// DemangleByte is the inverse of MangleByte: given a GPIO-port byte,
// recover the logical data byte.
func DemangleByte(pm *hardware.PinMap, dataBits int, out byte) uint16 {
	var b uint16
	for j := 0; j < dataBits && j < 8; j++ {
		p := pm.DataPin(j)
		if !p.Used() {
			continue
		}
		if out&(1<<uint(p.Index%8)) != 0 {
			b |= 1 << uint(j)
		}
	}
	return b
}
