package usecase

import "strings"

const (
	prefixContinue = "CON"
	prefixEnd      = "END"
)

// Response is the next screen of the dialogue.
type Response struct {
	Continue bool
	Message  string
}

func con(lines ...string) Response {
	return Response{Continue: true, Message: strings.Join(lines, "\n")}
}

func end(lines ...string) Response {
	return Response{Continue: false, Message: strings.Join(lines, "\n")}
}

// Kind is "CON" or "END".
func (r Response) Kind() string {
	if r.Continue {
		return prefixContinue
	}
	return prefixEnd
}

// String renders the wire form expected by the gateway.
func (r Response) String() string {
	return r.Kind() + " " + r.Message
}
