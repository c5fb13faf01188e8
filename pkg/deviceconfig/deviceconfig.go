// Package deviceconfig loads a device's Safety Configuration Parameters
// and Network Segment Safety fields from an INI file and assembles them
// into the byte slices pkg/safetyopen needs for CPCRC and SCID. It never
// persists a parameter back, runs a self-test, or touches a transport.
package deviceconfig

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/cipsafety/core/pkg/datamsg"
	"github.com/cipsafety/core/pkg/safetyopen"
	"github.com/cipsafety/core/pkg/wire"
)

// connectionSectionPrefix names every section in the file that describes
// one safety connection, e.g. "safety_connection.io1".
const connectionSectionPrefix = "safety_connection."

// Device holds the identity preamble bound into every SCID this device
// computes: the major software revision and hardware identifier the CIP
// Safety Stack mandates ahead of the configuration parameters themselves,
// so that incompatible firmware can never accept a matching configuration
// carried over from a previous revision.
type Device struct {
	MajorRevision byte
	HardwareID    uint16
}

// Connection holds one safety connection's Network Segment Safety fields
// and Safety Configuration Parameters, loaded from one
// "[safety_connection.<name>]" section.
type Connection struct {
	Name   string
	Format datamsg.Format

	MaxFaultNumber                   byte
	InitialTimeStamp                 uint16
	InitialRolloverValue             uint16
	PingIntervalEPIMultiplier        uint16
	TimeCoordMsgMinMultiplier        uint16
	NetworkTimeExpectationMultiplier uint16
	TimeoutMultiplier                byte
	MaxConsumerNumber                byte

	// ConfigParameters is the raw Safety Configuration Parameters byte
	// string fed into SCCRC, decoded from the section's hex-encoded
	// "config_parameters" key.
	ConfigParameters []byte
}

// File is a loaded safety configuration file: the device preamble plus
// every safety connection section it declares, keyed by connection name.
type File struct {
	Device      Device
	Connections map[string]*Connection
}

// Load reads a safety configuration file: one ini.Load call, then a pass
// over sections rather than hand-rolled line parsing.
func Load(path string) (*File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("deviceconfig: loading %s: %w", path, err)
	}

	f := &File{Connections: make(map[string]*Connection)}

	deviceSection, err := cfg.GetSection("device")
	if err != nil {
		return nil, fmt.Errorf("deviceconfig: %s: missing [device] section: %w", path, err)
	}
	f.Device, err = parseDevice(deviceSection)
	if err != nil {
		return nil, fmt.Errorf("deviceconfig: %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"major_revision": f.Device.MajorRevision,
		"hardware_id":    fmt.Sprintf("0x%04X", f.Device.HardwareID),
	}).Debug("deviceconfig: loaded device preamble")

	for _, section := range cfg.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, connectionSectionPrefix) {
			continue
		}
		connName := strings.TrimPrefix(name, connectionSectionPrefix)
		conn, err := parseConnection(section, connName)
		if err != nil {
			return nil, fmt.Errorf("deviceconfig: %s: [%s]: %w", path, name, err)
		}
		f.Connections[connName] = conn
		log.WithFields(log.Fields{
			"connection": connName,
			"format":     conn.Format,
		}).Debug("deviceconfig: loaded safety connection")
	}

	return f, nil
}

func parseDevice(section *ini.Section) (Device, error) {
	majorRev, err := section.Key("major_revision").Int()
	if err != nil {
		return Device{}, fmt.Errorf("invalid major_revision: %w", err)
	}
	hwID, err := strconv.ParseUint(section.Key("hardware_id").String(), 0, 16)
	if err != nil {
		return Device{}, fmt.Errorf("invalid hardware_id: %w", err)
	}
	return Device{MajorRevision: byte(majorRev), HardwareID: uint16(hwID)}, nil
}

func parseConnection(section *ini.Section, name string) (*Connection, error) {
	format, err := parseFormat(section.Key("format").String())
	if err != nil {
		return nil, err
	}

	u16 := func(key string) (uint16, error) {
		v, err := strconv.ParseUint(section.Key(key).String(), 0, 16)
		return uint16(v), err
	}
	u8 := func(key string) (byte, error) {
		v, err := strconv.ParseUint(section.Key(key).String(), 0, 8)
		return byte(v), err
	}

	conn := &Connection{Name: name, Format: format}
	var errs []string
	set := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", field, err))
		}
	}

	var perr error
	conn.MaxFaultNumber, perr = u8("max_fault_number")
	set("max_fault_number", perr)
	conn.InitialTimeStamp, perr = u16("initial_time_stamp")
	set("initial_time_stamp", perr)
	conn.InitialRolloverValue, perr = u16("initial_rollover_value")
	set("initial_rollover_value", perr)
	conn.PingIntervalEPIMultiplier, perr = u16("ping_interval_epi_multiplier")
	set("ping_interval_epi_multiplier", perr)
	conn.TimeCoordMsgMinMultiplier, perr = u16("time_coord_msg_min_multiplier")
	set("time_coord_msg_min_multiplier", perr)
	conn.NetworkTimeExpectationMultiplier, perr = u16("network_time_expectation_multiplier")
	set("network_time_expectation_multiplier", perr)
	conn.TimeoutMultiplier, perr = u8("timeout_multiplier")
	set("timeout_multiplier", perr)
	conn.MaxConsumerNumber, perr = u8("max_consumer_number")
	set("max_consumer_number", perr)

	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	hexParams := section.Key("config_parameters").String()
	params, err := hex.DecodeString(strings.TrimSpace(hexParams))
	if err != nil {
		return nil, fmt.Errorf("invalid config_parameters hex: %w", err)
	}
	conn.ConfigParameters = params

	return conn, nil
}

func parseFormat(s string) (datamsg.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base_short", "baseshort":
		return datamsg.BaseShort, nil
	case "base_long", "baselong":
		return datamsg.BaseLong, nil
	case "ext_short", "extshort", "extended_short":
		return datamsg.ExtShort, nil
	case "ext_long", "extlong", "extended_long":
		return datamsg.ExtLong, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

// NetworkSegmentSafety serializes this connection's Network Segment Safety
// fields into the fixed-length slice pkg/safetyopen.CPCRC binds into the
// fourth CPCRC input: NSSLenBase (32) bytes for Base Format, NSSLenExtended
// (34) for Extended. Only Extended Format carries Initial Time Stamp and
// Initial Rollover Value, in its last four bytes.
func (c *Connection) NetworkSegmentSafety() []byte {
	extended := c.Format.IsExtended()
	length := safetyopen.NSSLenBase
	if extended {
		length = safetyopen.NSSLenExtended
	}
	buf := make([]byte, length)

	buf[0] = c.MaxFaultNumber
	wire.PutUint16(buf[1:3], c.PingIntervalEPIMultiplier)
	wire.PutUint16(buf[3:5], c.TimeCoordMsgMinMultiplier)
	wire.PutUint16(buf[5:7], c.NetworkTimeExpectationMultiplier)
	buf[7] = c.TimeoutMultiplier
	buf[8] = c.MaxConsumerNumber
	// bytes 9..length-1 are the Safety Configuration CRC and Time Stamp
	// slots (filled in by the caller from a computed SCID, see SCID
	// below) plus reserved padding; left zero here, apart from the last
	// four bytes of an Extended Format slice, written just below.
	if extended {
		wire.PutUint16(buf[length-4:length-2], c.InitialTimeStamp)
		wire.PutUint16(buf[length-2:length], c.InitialRolloverValue)
	}
	return buf
}

// SCID computes this connection's Safety Configuration Identifier from the
// device preamble and this connection's configuration parameters.
func (f *File) SCID(connName string, time uint32, date uint16) (safetyopen.SCID, error) {
	conn, ok := f.Connections[connName]
	if !ok {
		return safetyopen.SCID{}, fmt.Errorf("deviceconfig: no such connection %q", connName)
	}
	return safetyopen.ComputeSCID(f.Device.MajorRevision, f.Device.HardwareID, conn.ConfigParameters, time, date), nil
}

// ConnectionNames returns every loaded connection's name in stable sorted
// order, for deterministic CLI output.
func (f *File) ConnectionNames() []string {
	names := make([]string, 0, len(f.Connections))
	for name := range f.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
