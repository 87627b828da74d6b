// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

// Keyboard usage IDs, page 0x07 (Keyboard/Keypad), as assigned by the
// USB HID Usage Tables specification. Indices match the bit position
// used by Keyboard.SetKey.
const (
	KeyboardErrorRollOver  = 0x01
	KeyboardPostFail       = 0x02
	KeyboardErrorUndefined = 0x03
	KeyboardA              = 0x04
	KeyboardB              = 0x05
	KeyboardC              = 0x06
	KeyboardD              = 0x07
	KeyboardE              = 0x08
	KeyboardF              = 0x09
	KeyboardG              = 0x0a
	KeyboardH              = 0x0b
	KeyboardI              = 0x0c
	KeyboardJ              = 0x0d
	KeyboardK              = 0x0e
	KeyboardL              = 0x0f
	KeyboardM              = 0x10
	KeyboardN              = 0x11
	KeyboardO              = 0x12
	KeyboardP              = 0x13
	KeyboardQ              = 0x14
	KeyboardR              = 0x15
	KeyboardS              = 0x16
	KeyboardT              = 0x17
	KeyboardU              = 0x18
	KeyboardV              = 0x19
	KeyboardW              = 0x1a
	KeyboardX              = 0x1b
	KeyboardY              = 0x1c
	KeyboardZ              = 0x1d
	Keyboard1              = 0x1e
	Keyboard2              = 0x1f
	Keyboard3              = 0x20
	Keyboard4              = 0x21
	Keyboard5              = 0x22
	Keyboard6              = 0x23
	Keyboard7              = 0x24
	Keyboard8              = 0x25
	Keyboard9              = 0x26
	Keyboard0              = 0x27
	KeyboardEnter          = 0x28
	KeyboardEscape         = 0x29
	KeyboardBackspace      = 0x2a
	KeyboardTab            = 0x2b
	KeyboardSpacebar       = 0x2c
	KeyboardMinus          = 0x2d
	KeyboardEqual          = 0x2e
	KeyboardLeftBracket    = 0x2f
	KeyboardRightBracket   = 0x30
	KeyboardReverseSolidus = 0x31
	KeyboardSemicolon      = 0x33
	KeyboardSingleQuote    = 0x34
	KeyboardGraveAccent    = 0x35
	KeyboardComma          = 0x36
	KeyboardDot            = 0x37
	KeyboardSolidus        = 0x38
	KeyboardCapsLock       = 0x39
	KeyboardF1             = 0x3a
	KeyboardF2             = 0x3b
	KeyboardF3             = 0x3c
	KeyboardF4             = 0x3d
	KeyboardF5             = 0x3e
	KeyboardF6             = 0x3f
	KeyboardF7             = 0x40
	KeyboardF8             = 0x41
	KeyboardF9             = 0x42
	KeyboardF10            = 0x43
	KeyboardF11            = 0x44
	KeyboardF12            = 0x45
	KeyboardPrintScreen    = 0x46
	KeyboardScrollLock     = 0x47
	KeyboardPause          = 0x48
	KeyboardInsert         = 0x49
	KeyboardHome           = 0x4a
	KeyboardPageUp         = 0x4b
	KeyboardDelete         = 0x4c
	KeyboardEnd            = 0x4d
	KeyboardPageDown       = 0x4e
	KeyboardRightArrow     = 0x4f
	KeyboardLeftArrow      = 0x50
	KeyboardDownArrow      = 0x51
	KeyboardUpArrow        = 0x52
	KeypadNumLock          = 0x53
	KeypadSolidus          = 0x54
	KeypadStar             = 0x55
	KeypadMinus            = 0x56
	KeypadPlus             = 0x57
	KeypadEnter            = 0x58
	Keypad1                = 0x59
	Keypad2                = 0x5a
	Keypad3                = 0x5b
	Keypad4                = 0x5c
	Keypad5                = 0x5d
	Keypad6                = 0x5e
	Keypad7                = 0x5f
	Keypad8                = 0x60
	Keypad9                = 0x61
	Keypad0                = 0x62
	KeypadDot              = 0x63
	KeyboardApplication    = 0x65
	KeyboardPower          = 0x66
	KeypadEqual            = 0x67
	KeyboardF13            = 0x68
	KeyboardF14            = 0x69
	KeyboardF15            = 0x6a
	KeyboardF16            = 0x6b
	KeyboardF17            = 0x6c
	KeyboardF18            = 0x6d
	KeyboardF19            = 0x6e
	KeyboardF20            = 0x6f
	KeyboardF21            = 0x70
	KeyboardF22            = 0x71
	KeyboardF23            = 0x72
	KeyboardF24            = 0x73

	KeyboardLeftControl  = 0xe0
	KeyboardLeftShift    = 0xe1
	KeyboardLeftAlt      = 0xe2
	KeyboardLeftGUI      = 0xe3
	KeyboardRightControl = 0xe4
	KeyboardRightShift   = 0xe5
	KeyboardRightAlt     = 0xe6
	KeyboardRightGUI     = 0xe7
)

// System-control usage IDs, page 0x01 (Generic Desktop), usage Sys
// Control (0x80). Keyboard.SetSysControlKey indexes these from
// SystemPowerDown (zero-based).
const (
	SystemPowerDown   = 0x81
	SystemSleep       = 0x82
	SystemWakeUp      = 0x83
	SystemContextMenu = 0x84
	SystemMainMenu    = 0x85
	SystemAppMenu     = 0x86
	SystemMenuHelp    = 0x87
	SystemMenuExit    = 0x88
	SystemMenuSelect  = 0x89
	SystemMenuRight   = 0x8a
	SystemMenuLeft    = 0x8b
	SystemMenuUp      = 0x8c
	SystemMenuDown    = 0x8d
	SystemColdRestart = 0x8e
	SystemWarmRestart = 0x8f
)
