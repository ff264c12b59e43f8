// Package mangle implements the address and byte permutations (C4/C5) at
// the core of the One ROM image format: a logical (address, CS, X) tuple
// maps to a GPIO-port index, and a logical data byte maps to a
// bit-permuted GPIO-port byte, so that at runtime a port read requires no
// arithmetic at all.
//
// # Address mangling
//
// AddressIndex walks the chip's address-bit pin assignments (with the
// 2732 A11/A12 swap applied where relevant), the chip-select pins (omitted
// entirely for 28-pin chips, whose CS lines are not part of the GPIO
// index), and the X1/X2 bank/extension pins when the ROM set is multi-CS
// or bank-switched. When address and data share one GPIO port and data
// occupies that port's low byte, every address/CS/X pin position is
// shifted down by 8 so the index fits the port actually read at runtime.
//
// # Byte mangling
//
// MangleByte and DemangleByte translate between a logical data byte and
// its bit-permuted GPIO-port representation, via the chip's data-pin
// assignment. The mod-8 projection applies only on boards where the data
// pins live above bit 7 of their own port (for example data lines on
// GPIOs 16..23 written through an 8-bit-wide store); the Fire revisions
// in the hardware catalog wire data on GPIOs 0..7, where it is the
// identity.
package mangle
