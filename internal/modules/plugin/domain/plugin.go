package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Capability gates what a plugin may be asked to do. Report plugins receive
// the selected tag's analytics as JSON; export plugins receive the store's
// CSV export; fullscreen_tty plugins hand back an argv for the host terminal.
type Capability string

const (
	CapabilityReport        Capability = "report"
	CapabilityExport        Capability = "export"
	CapabilityFullscreenTTY Capability = "fullscreen_tty"
)

var (
	ErrPluginDisabled    = errors.New("plugin is disabled")
	ErrChecksumMismatch  = errors.New("plugin checksum mismatch")
	ErrCapabilityMissing = errors.New("plugin capability missing")
	ErrCommandNotFound   = errors.New("plugin command not found")
	ErrPluginTimeout     = errors.New("plugin timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Binary       string       `json:"binary"`
	SHA256       string       `json:"sha256"`
	Enabled      bool         `json:"enabled"`
	Capabilities []Capability `json:"capabilities"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("plugin binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("plugin sha256 must be lowercase 64-char hex")
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("plugin capabilities are required")
	}
	seen := map[Capability]struct{}{}
	for _, capability := range m.Capabilities {
		if err := capability.Validate(); err != nil {
			return err
		}
		if _, ok := seen[capability]; ok {
			return fmt.Errorf("duplicate capability: %s", capability)
		}
		seen[capability] = struct{}{}
	}
	return nil
}

func (c Capability) Validate() error {
	switch c {
	case CapabilityReport, CapabilityExport, CapabilityFullscreenTTY:
		return nil
	default:
		return fmt.Errorf("unknown capability: %s", c)
	}
}

func (m Manifest) HasCapability(capability Capability) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type CommandKind string

const (
	CommandKindReport CommandKind = "report"
	CommandKindExport CommandKind = "export"
	CommandKindTTY    CommandKind = "fullscreen_tty"
)

func (k CommandKind) Validate() error {
	switch k {
	case CommandKindReport, CommandKindExport, CommandKindTTY:
		return nil
	default:
		return fmt.Errorf("unknown command kind: %s", k)
	}
}

type CommandDescriptor struct {
	ID              string
	Title           string
	Description     string
	Kind            CommandKind
	InputSchemaJSON string
	TimeoutMS       int
}

func (d CommandDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("command id is required")
	}
	return d.Kind.Validate()
}

type Metadata struct {
	Name         string
	Version      string
	Capabilities []Capability
}

// ExecuteContext tells a plugin where the host keeps its data and what the
// user had selected when the command ran.
type ExecuteContext struct {
	DataDir   string
	TagName   string
	SessionID string
	Cwd       string
	Env       map[string]string
}

func (c ExecuteContext) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.Cwd == "" {
		return fmt.Errorf("cwd is required")
	}
	return nil
}

// ExecuteRequest carries one command invocation. Payload is the host-supplied
// data the command operates on: report JSON for report commands, CSV text for
// export commands, empty for TTY preparation.
type ExecuteRequest struct {
	CommandID string
	InputJSON string
	Payload   string
	Context   ExecuteContext
}

func (r ExecuteRequest) Validate() error {
	if r.CommandID == "" {
		return fmt.Errorf("command id is required")
	}
	return r.Context.Validate()
}

type ExecuteResult struct {
	Stdout     string
	Stderr     string
	OutputJSON string
	ExitCode   int
}

type TTYPlan struct {
	Argv []string
	Cwd  string
	Env  map[string]string
}

func (p TTYPlan) Validate() error {
	if len(p.Argv) == 0 {
		return fmt.Errorf("tty argv is required")
	}
	if p.Cwd == "" {
		return fmt.Errorf("tty cwd is required")
	}
	return nil
}
