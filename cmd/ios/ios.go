// Package zxios is the gomobile surface of the ZX81 core. The iOS app
// drives the core through these functions only.
package zxios

import (
	ios "github.com/user-none/eblitui-ios"
	"github.com/user-none/emzx/adapter"
)

func init() {
	ios.RegisterFactory(&adapter.Factory{})
}

// Lifecycle and frame loop.

func Init(path string, regionCode int) bool { return ios.Init(path, regionCode) }
func Close()                                { ios.Close() }
func RunFrame()                             { ios.RunFrame() }
func Region() int                           { return ios.Region() }
func GetFPS() int                           { return ios.GetFPS() }
func SystemInfoJSON() string                { return ios.SystemInfoJSON() }
func SetOption(key string, value string)    { ios.SetOption(key, value) }
func DetectRegionFromPath(path string) int  { return ios.DetectRegionFromPath(path) }

// Video, audio and input. Audio is the MIC speaker output.

func GetFrameData() []byte             { return ios.GetFrameData() }
func FrameWidth() int                  { return ios.FrameWidth() }
func FrameStride() int                 { return ios.FrameStride() }
func FrameHeight() int                 { return ios.FrameHeight() }
func GetAudioData() []byte             { return ios.GetAudioData() }
func SetInput(player int, buttons int) { ios.SetInput(player, buttons) }

// Save states. gomobile cannot pass []byte out by value, so states are
// read a byte at a time. There is no battery RAM to persist.

func HasSaveStates() bool        { return ios.HasSaveStates() }
func SaveState() bool            { return ios.SaveState() }
func StateLen() int              { return ios.StateLen() }
func StateByte(i int) int        { return ios.StateByte(i) }
func LoadState(data []byte) bool { return ios.LoadState(data) }

// ROM import.

func ExtractAndStoreROM(srcPath, destDir string) (string, error) {
	return ios.ExtractAndStoreROM(srcPath, destDir)
}
func GetCRC32FromPath(path string) int64 { return ios.GetCRC32FromPath(path) }
