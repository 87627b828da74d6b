// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ip-kvm-go/usbkvm/pkg/file"
)

// Function name prefixes used to dispatch cleanup by directory name,
// since ConfigFS gives back only a flat list of function directories
// with no type tag of their own.
const (
	FunctionPrefixHID         = "hid"
	FunctionPrefixMassStorage = "mass_storage"
)

const languageCodeEnglish = 0x409

// UsbDeviceSpeed names the max_speed ConfigFS attribute.
type UsbDeviceSpeed string

const (
	SpeedUnknown    UsbDeviceSpeed = "UNKNOWN"
	SpeedLow        UsbDeviceSpeed = "low-speed"
	SpeedFull       UsbDeviceSpeed = "full-speed"
	SpeedHigh       UsbDeviceSpeed = "high-speed"
	SpeedWireless   UsbDeviceSpeed = "wireless"
	SpeedSuper      UsbDeviceSpeed = "super-speed"
	SpeedSuperPlus  UsbDeviceSpeed = "super-speed-plus"
)

// Configurable is implemented by every ConfigFS-backed node: a gadget,
// a configuration, a function, a string table, or a LUN. ApplyConfig
// writes the in-memory value to baseDir (creating it first where the
// node owns its own directory); most implementations then read it back
// via FromConfig so the caller observes what the kernel actually
// accepted, but GadgetInfo and MsgLun do not read back.
// FromConfig alone re-hydrates an in-memory value from an
// already-provisioned baseDir; GadgetInfo.FromConfig reads nothing and
// always returns an error.
type Configurable interface {
	ApplyConfig(baseDir string) error
	FromConfig(baseDir string) error
}

// UsbFunctionOpts is a Configurable that additionally knows how to
// clean up its own ConfigFS subtree; the gadget cleanup dispatcher
// calls this by matching the directory name prefix.
type UsbFunctionOpts interface {
	Configurable
	Cleanup(baseDir string) error
}

// GadgetInfo is the root of a provisioned USB gadget: device
// descriptors, one or more functions, one or more configurations
// binding functions together, string descriptors per language code,
// and the UDC binding.
type GadgetInfo struct {
	BcdDevice      uint16
	BcdUSB         uint16
	BDeviceClass   uint8
	BDeviceProtocol uint8
	BDeviceSubClass uint8
	BMaxPacketSize0 uint8
	IDProduct      uint16
	IDVendor       uint16
	MaxSpeed       UsbDeviceSpeed
	UDC            string

	Configs   map[string]*UsbConfiguration
	Functions map[string]UsbFunctionOpts
	Strings   map[uint16]*GadgetStrings
	OsDesc    OsDesc
}

// NewGadgetInfo returns a GadgetInfo with the defaults the original
// implementation ships: bcd_device 0x515 (an ip-kvm-go release
// marker, not a real USB-IF assignment), maximum negotiated speed
// super-speed-plus, and UDC left unbound ("\n").
func NewGadgetInfo() *GadgetInfo {
	return &GadgetInfo{
		BcdDevice: 0x515,
		MaxSpeed:  SpeedSuperPlus,
		UDC:       "\n",
		Configs:   map[string]*UsbConfiguration{},
		Functions: map[string]UsbFunctionOpts{},
		Strings:   map[uint16]*GadgetStrings{},
	}
}

func (g *GadgetInfo) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bcdDevice"), strconv.Itoa(int(g.BcdDevice))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bcdUSB"), strconv.Itoa(int(g.BcdUSB))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bDeviceClass"), strconv.Itoa(int(g.BDeviceClass))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bDeviceProtocol"), strconv.Itoa(int(g.BDeviceProtocol))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bDeviceSubClass"), strconv.Itoa(int(g.BDeviceSubClass))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bMaxPacketSize0"), strconv.Itoa(int(g.BMaxPacketSize0))); err != nil {
		return err
	}

	functionsDir := filepath.Join(baseDir, "functions")
	for name, fn := range g.Functions {
		if err := fn.ApplyConfig(filepath.Join(functionsDir, name)); err != nil {
			return err
		}
	}

	configsDir := filepath.Join(baseDir, "configs")
	for name, cfg := range g.Configs {
		if err := cfg.ApplyConfig(filepath.Join(configsDir, name)); err != nil {
			return err
		}
	}

	if err := file.WriteString(filepath.Join(baseDir, "idProduct"), strconv.Itoa(int(g.IDProduct))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "idVendor"), strconv.Itoa(int(g.IDVendor))); err != nil {
		return err
	}
	// Older kernels may not expose max_speed; ignore the failure.
	_ = file.WriteString(filepath.Join(baseDir, "max_speed"), string(g.MaxSpeed))

	if err := g.OsDesc.ApplyConfig(filepath.Join(baseDir, "os_desc")); err != nil {
		return err
	}

	stringsDir := filepath.Join(baseDir, "strings")
	for lang, gs := range g.Strings {
		if err := gs.ApplyConfig(filepath.Join(stringsDir, fmt.Sprintf("0x%x", lang))); err != nil {
			return err
		}
	}

	return file.WriteString(filepath.Join(baseDir, "UDC"), g.UDC)
}

// FromConfig reads nothing from baseDir and leaves g unchanged: it
// always returns an ErrInvariant-tagged error. Neither the gadget's own
// attributes nor its UDC binding are read back.
func (g *GadgetInfo) FromConfig(baseDir string) error {
	return file.NewInvariantError("GadgetInfo.FromConfig: reading a gadget back from ConfigFS is not supported")
}

// Cleanup tears down a previously applied gadget: it unbinds the UDC
// (unless the binding already reports disconnected, `\n`, in which
// case writing again is a no-op that would otherwise error), cleans
// every configuration, dispatches function cleanup by directory-name
// prefix, resets the OS descriptor, cleans every string table, and
// finally removes the gadget's own directory.
func (g *GadgetInfo) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}

	udcPath := filepath.Join(baseDir, "UDC")
	udc, err := file.ReadString(udcPath)
	if err != nil {
		return err
	}
	if udc != "" {
		if err := file.WriteString(udcPath, "\n"); err != nil {
			return err
		}
	}

	configsDir := filepath.Join(baseDir, "configs")
	configEntries, err := file.ReadDirEntries(configsDir)
	if err != nil {
		return err
	}
	for _, entry := range configEntries {
		if err := (&UsbConfiguration{}).Cleanup(filepath.Join(configsDir, entry.Name())); err != nil {
			return err
		}
	}

	functionsDir := filepath.Join(baseDir, "functions")
	functionEntries, err := file.ReadDirEntries(functionsDir)
	if err != nil {
		return err
	}
	for _, entry := range functionEntries {
		path := filepath.Join(functionsDir, entry.Name())
		switch {
		case strings.HasPrefix(entry.Name(), FunctionPrefixHID):
			if err := (&FunctionHidOpts{}).Cleanup(path); err != nil {
				return err
			}
		case strings.HasPrefix(entry.Name(), FunctionPrefixMassStorage):
			if err := (&FunctionMsgOpts{}).Cleanup(path); err != nil {
				return err
			}
		default:
			// Unknown function kind: leave it alone rather than guess.
		}
	}

	if err := (&OsDesc{}).Cleanup(filepath.Join(baseDir, "os_desc")); err != nil {
		return err
	}

	stringsDir := filepath.Join(baseDir, "strings")
	stringEntries, err := file.ReadDirEntries(stringsDir)
	if err != nil {
		return err
	}
	for _, entry := range stringEntries {
		if err := (&GadgetStrings{}).Cleanup(filepath.Join(stringsDir, entry.Name())); err != nil {
			return err
		}
	}

	return file.RemoveDir(baseDir)
}

// UsbConfiguration is one configs/c.N entry: attributes plus symlinks
// to the functions it bundles.
type UsbConfiguration struct {
	BmAttributes uint8
	MaxPower     uint16
	Functions    []string
	Strings      map[uint16]*GadgetConfigName
}

// NewUsbConfiguration returns a UsbConfiguration with the bus-powered
// default (bmAttributes 0x80, 2 * 2mA = 4mA max power placeholder —
// callers override MaxPower to the real budget).
func NewUsbConfiguration() *UsbConfiguration {
	return &UsbConfiguration{
		BmAttributes: 0x80,
		MaxPower:     2,
		Strings:      map[uint16]*GadgetConfigName{},
	}
}

func (c *UsbConfiguration) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "bmAttributes"), strconv.Itoa(int(c.BmAttributes))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "MaxPower"), strconv.Itoa(int(c.MaxPower))); err != nil {
		return err
	}

	stringsDir := filepath.Join(baseDir, "strings")
	for lang, name := range c.Strings {
		if err := name.ApplyConfig(filepath.Join(stringsDir, fmt.Sprintf("0x%x", lang))); err != nil {
			return err
		}
	}

	for _, fn := range c.Functions {
		target := filepath.Join("../../functions", fn)
		link := filepath.Join(baseDir, fn)
		if err := file.Symlink(target, link); err != nil {
			return err
		}
	}

	return c.FromConfig(baseDir)
}

func (c *UsbConfiguration) FromConfig(baseDir string) error {
	bm, err := file.ReadNum[uint8](filepath.Join(baseDir, "bmAttributes"))
	if err != nil {
		return err
	}
	c.BmAttributes = bm
	mp, err := file.ReadNum[uint16](filepath.Join(baseDir, "MaxPower"))
	if err != nil {
		return err
	}
	c.MaxPower = mp
	return nil
}

// Cleanup removes every symlink directly under baseDir (the bundled
// functions), cleans the string table, and removes baseDir itself.
func (c *UsbConfiguration) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}

	entries, err := file.ReadDirEntries(baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(baseDir, entry.Name())
		isLink, err := file.LstatIsSymlink(path)
		if err != nil {
			continue
		}
		if isLink {
			if err := file.RemoveFile(path); err != nil {
				return err
			}
		}
	}

	stringsDir := filepath.Join(baseDir, "strings")
	stringEntries, err := file.ReadDirEntries(stringsDir)
	if err != nil {
		return err
	}
	for _, entry := range stringEntries {
		if err := (&GadgetConfigName{}).Cleanup(filepath.Join(stringsDir, entry.Name())); err != nil {
			return err
		}
	}

	return file.RemoveDir(baseDir)
}

// GadgetStrings is one strings/0xNNN entry at the gadget level.
type GadgetStrings struct {
	Manufacturer string
	Product      string
	SerialNumber string
}

func NewGadgetStrings() *GadgetStrings {
	return &GadgetStrings{Manufacturer: "\n", Product: "\n", SerialNumber: "\n"}
}

func (s *GadgetStrings) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "manufacturer"), s.Manufacturer); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "product"), s.Product); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "serialnumber"), s.SerialNumber); err != nil {
		return err
	}
	return s.FromConfig(baseDir)
}

func (s *GadgetStrings) FromConfig(baseDir string) error {
	m, err := file.ReadString(filepath.Join(baseDir, "manufacturer"))
	if err != nil {
		return err
	}
	p, err := file.ReadString(filepath.Join(baseDir, "product"))
	if err != nil {
		return err
	}
	sn, err := file.ReadString(filepath.Join(baseDir, "serialnumber"))
	if err != nil {
		return err
	}
	s.Manufacturer, s.Product, s.SerialNumber = m, p, sn
	return nil
}

// Cleanup removes the strings/0xNNN directory.
func (s *GadgetStrings) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}
	return file.RemoveDir(baseDir)
}

// OsDesc is the gadget's os_desc/ node (Microsoft OS descriptor
// support). It has no directory of its own to create — ConfigFS
// pre-populates os_desc/ when the gadget directory is created.
type OsDesc struct {
	Use         bool
	BVendorCode uint8
	QwSign      string
}

func NewOsDesc() OsDesc {
	// A literal "\n" for qw_sign hangs the kernel write; the upstream
	// driver uses a blank two-line placeholder instead.
	return OsDesc{QwSign: "\n\n"}
}

func (o *OsDesc) ApplyConfig(baseDir string) error {
	if err := file.WriteBool(filepath.Join(baseDir, "use"), o.Use); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "b_vendor_code"), strconv.Itoa(int(o.BVendorCode))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "qw_sign"), o.QwSign); err != nil {
		return err
	}
	return o.FromConfig(baseDir)
}

func (o *OsDesc) FromConfig(baseDir string) error {
	code, err := file.ReadNum[uint8](filepath.Join(baseDir, "b_vendor_code"))
	if err != nil {
		return err
	}
	sign, err := file.ReadString(filepath.Join(baseDir, "qw_sign"))
	if err != nil {
		return err
	}
	use, err := file.ReadBool(filepath.Join(baseDir, "use"))
	if err != nil {
		return err
	}
	o.BVendorCode, o.QwSign, o.Use = code, sign, use
	return nil
}

// Cleanup disables the OS descriptor rather than removing its
// directory, since os_desc/ is kernel-owned and never created by us.
func (o *OsDesc) Cleanup(baseDir string) error {
	return file.WriteString(filepath.Join(baseDir, "use"), "0")
}

// GadgetConfigName is one configs/c.N/strings/0xNNN entry.
type GadgetConfigName struct {
	Configuration string
}

func NewGadgetConfigName() *GadgetConfigName {
	return &GadgetConfigName{Configuration: "\n"}
}

func (n *GadgetConfigName) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "configuration"), n.Configuration); err != nil {
		return err
	}
	return n.FromConfig(baseDir)
}

func (n *GadgetConfigName) FromConfig(baseDir string) error {
	c, err := file.ReadString(filepath.Join(baseDir, "configuration"))
	if err != nil {
		return err
	}
	n.Configuration = c
	return nil
}

func (n *GadgetConfigName) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}
	return file.RemoveDir(baseDir)
}

// FindAvailableUDC enumerates /sys/class/udc and returns the first
// entry's name, matching the original's behavior of taking the literal
// first controller with no state filtering. A UDC left "configured" by
// a previous run (e.g. the process crashed before unbinding) is still
// picked up on the next provision.
func FindAvailableUDC() (string, error) {
	entries, err := file.ReadDirEntries(udcClassPath)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoUDCFound
	}
	return entries[0].Name(), nil
}

const (
	configFSRoot = "/sys/kernel/config"
	gadgetRoot   = "/sys/kernel/config/usb_gadget"
	udcClassPath = "/sys/class/udc"
)

// GadgetDir returns the ConfigFS directory a gadget named name is
// provisioned under.
func GadgetDir(name string) string {
	return filepath.Join(gadgetRoot, name)
}

// GetGadgetStatus reports the runtime state of a provisioned gadget by
// reading its UDC binding back from ConfigFS. It returns
// ErrGadgetNotFound if the gadget's directory does not exist.
func GetGadgetStatus(name string) (*GadgetStatus, error) {
	baseDir := GadgetDir(name)
	if !file.IsDir(baseDir) {
		return nil, ErrGadgetNotFound
	}
	udc, err := file.ReadString(filepath.Join(baseDir, "UDC"))
	if err != nil {
		return nil, err
	}
	bound := udc != "" && udc != "\n"
	state := "unbound"
	if bound {
		state = "bound"
	}
	return &GadgetStatus{
		Name:  name,
		Bound: bound,
		UDC:   strings.TrimSpace(udc),
		State: state,
	}, nil
}
