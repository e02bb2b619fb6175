package emu

// Core identification reported to frontends.
const (
	Name    = "emzx"
	Version = "0.1.0"
)
