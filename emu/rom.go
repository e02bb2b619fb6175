package emu

import (
	"errors"
	"fmt"
)

// ValidateROM checks that rom can be used as the system image: it must
// be non-empty and fit the ROM region.
func ValidateROM(rom []byte) error {
	if len(rom) == 0 {
		return errors.New("ROM image is empty")
	}
	if len(rom) > ROMSize {
		return fmt.Errorf("ROM image too large (%d bytes, max %d)", len(rom), ROMSize)
	}
	return nil
}
