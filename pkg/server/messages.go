package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// Control actions a client may send.
const (
	ActionGenerate  = "generate"
	ActionStart     = "start"
	ActionStop      = "stop"
	ActionSpeed     = "speed"
	ActionAlgorithm = "algorithm"
	ActionState     = "state"
)

// Message types the server sends.
const (
	TypeState = "state"
	TypeArray = "array"
	TypeEvent = "event"
	TypeDone  = "done"
	TypeError = "error"
)

// ErrInvalidMessage wraps every schema violation of a control message.
var ErrInvalidMessage = errors.New("invalid control message")

//go:embed control.schema.json
var controlSchemaJSON []byte

// ControlMessage is a client request. Optional fields are nil when absent.
type ControlMessage struct {
	Action    string `json:"action"`
	Size      *int   `json:"size,omitempty"`
	Speed     *int   `json:"speed,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

// ServerMessage is everything the server writes to a client; Type selects
// which of the other fields are set.
type ServerMessage struct {
	Type       string                 `json:"type"`
	Event      *sorting.Event         `json:"event,omitempty"`
	Values     []int                  `json:"values,omitempty"`
	Stats      *sorting.StatsSnapshot `json:"stats,omitempty"`
	Cancelled  *bool                  `json:"cancelled,omitempty"`
	State      *session.Snapshot      `json:"state,omitempty"`
	Algorithms []AlgorithmInfo        `json:"algorithms,omitempty"`
	Message    string                 `json:"message,omitempty"`
}

// AlgorithmInfo pairs an algorithm id with its display information.
type AlgorithmInfo struct {
	ID sorting.Algorithm `json:"id"`
	sorting.Info
}

func algorithmInfos() []AlgorithmInfo {
	algs := sorting.Algorithms()
	out := make([]AlgorithmInfo, len(algs))

	for i, alg := range algs {
		out[i] = AlgorithmInfo{ID: alg, Info: alg.Info()}
	}

	return out
}

// controlValidator checks raw client messages against the embedded schema.
type controlValidator struct {
	schema *gojsonschema.Schema
}

func newControlValidator() (*controlValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(controlSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile control schema: %w", err)
	}

	return &controlValidator{schema: schema}, nil
}

// Decode validates data and unmarshals it into a ControlMessage.
func (v *controlValidator) Decode(data []byte) (ControlMessage, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return ControlMessage{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resErr := range result.Errors() {
			details = append(details, resErr.String())
		}

		return ControlMessage{}, fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(details, "; "))
	}

	var msg ControlMessage

	unmarshalErr := json.Unmarshal(data, &msg)
	if unmarshalErr != nil {
		return ControlMessage{}, fmt.Errorf("%w: %w", ErrInvalidMessage, unmarshalErr)
	}

	return msg, nil
}
