package server

import (
	"encoding/json"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/widget"
)

// MessageType identifies a protocol message.
type MessageType string

// Client message types.
const (
	MsgHello       MessageType = "hello"
	MsgHashChange  MessageType = "hashchange"
	MsgNavigate    MessageType = "navigate"
	MsgSort        MessageType = "sort"
	MsgPage        MessageType = "page"
	MsgAmount      MessageType = "amount"
	MsgFilter      MessageType = "filter"
	MsgFilterReset MessageType = "filterReset"
)

// Server message types.
const (
	MsgHistory MessageType = "history"
	MsgView    MessageType = "view"
	MsgError   MessageType = "error"
)

// Page actions.
const (
	PagePrev   = "prev"
	PageNext   = "next"
	PageSelect = "select"
)

// ClientMessage is any message the thin client sends. Only the fields of
// the given type are set.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	Hash   string      `json:"hash,omitempty"`
	Path   string      `json:"path,omitempty"`
	Column string      `json:"column,omitempty"`
	Action string      `json:"action,omitempty"`
	Index  int         `json:"index,omitempty"`
	Value  string      `json:"value,omitempty"`
}

// DecodeClientMessage parses one client message.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, errors.New("P160").Wrap(err)
	}
	if m.Type == "" {
		return ClientMessage{}, errors.New("P160").WithDetail("message without type")
	}
	return m, nil
}

// ServerMessage is any message the server sends.
type ServerMessage struct {
	Type MessageType `json:"type"`

	// history
	Mode string `json:"mode,omitempty"`
	Hash string `json:"hash,omitempty"`

	// view
	View *ViewPayload `json:"view,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ViewPayload is the full state the client renders.
type ViewPayload struct {
	Path   string            `json:"path"`
	Links  []widget.Link     `json:"links"`
	Amount widget.AmountView `json:"amount"`
	Filter string            `json:"filter"`
	Table  *widget.TableView `json:"table,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// errorMessage converts err into an error message.
func errorMessage(err error) ServerMessage {
	pe := errors.FromError(err, "")
	msg := pe.Message
	if pe.Detail != "" {
		msg += ": " + pe.Detail
	}
	if pe.Wrapped != nil {
		msg += ": " + pe.Wrapped.Error()
	}
	return ServerMessage{Type: MsgError, Code: pe.Code, Message: msg}
}
