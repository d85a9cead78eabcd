package remote

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lixenwraith/gridscout/grid"
)

const Version = "1.0"

// Frame types
const (
	TypeHello   = "HELLO"   // agent -> hub
	TypeWelcome = "WELCOME" // hub -> agent, carries the map
	TypeRun     = "RUN"     // hub -> agent, start a search
	TypeStop    = "STOP"    // hub -> agent, abandon the search
	TypePos     = "POS"     // agent -> hub, position update
)

// BaseMessage lets frames be routed by type before full decoding
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// Cell is a coordinate on the wire as [row, col]
type Cell [2]int

func cellOf(c grid.Coord) Cell  { return Cell{c.Row, c.Col} }
func (c Cell) Coord() grid.Coord { return grid.Coord{Row: c[0], Col: c[1]} }

type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AgentName       string `json:"agent_name"`
}

type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Name            string   `json:"name"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Rows            []string `json:"rows"`
}

type RunMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Run             uint64 `json:"run"`
	Start           Cell   `json:"start"`
	Target          Cell   `json:"target"`
}

type StopMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Run             uint64 `json:"run"`
}

type PosMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Run             uint64 `json:"run"`
	Old             Cell   `json:"old"`
	Current         Cell   `json:"current"`
	Reached         bool   `json:"reached"`
	Energy          int    `json:"energy"`
}

//go:embed hello.schema.json
var helloSchemaSource []byte

//go:embed pos.schema.json
var posSchemaSource []byte

var (
	helloSchema = mustCompile("mem://schemas/hello.json", helloSchemaSource)
	posSchema   = mustCompile("mem://schemas/pos.json", posSchemaSource)
)

func mustCompile(url string, src []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(src)); err != nil {
		panic(fmt.Sprintf("%s: %v", url, err))
	}
	return compiler.MustCompile(url)
}

// validateFrame checks raw JSON against s before it is decoded into a struct
func validateFrame(s *jsonschema.Schema, raw []byte) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	return s.Validate(generic)
}

// DecodePos validates and decodes a POS frame
func DecodePos(raw []byte) (PosMsg, error) {
	var m PosMsg
	if err := validateFrame(posSchema, raw); err != nil {
		return m, fmt.Errorf("pos frame: %w", err)
	}
	err := json.Unmarshal(raw, &m)
	return m, err
}

// DecodeHello validates and decodes a HELLO frame
func DecodeHello(raw []byte) (HelloMsg, error) {
	var m HelloMsg
	if err := validateFrame(helloSchema, raw); err != nil {
		return m, fmt.Errorf("hello frame: %w", err)
	}
	err := json.Unmarshal(raw, &m)
	return m, err
}

// welcomeFor describes l to a newly connected agent
func welcomeFor(l *grid.Layout) WelcomeMsg {
	return WelcomeMsg{
		Type:            TypeWelcome,
		ProtocolVersion: Version,
		Name:            l.Name(),
		Width:           l.Width(),
		Height:          l.Height(),
		Rows:            l.Rows(),
	}
}
