package tuitest

import (
	"bytes"
	"io"
)

// probeReply pairs a terminal query the program may emit with the answer a
// dark 1x1 terminal would give.
type probeReply struct {
	query []byte
	reply []byte
}

var probeReplies = []probeReply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderWindow = 256
	responderTail   = 64
)

// responder answers cursor and colour queries so termenv and lipgloss do
// not stall waiting on a real terminal.
type responder struct {
	w       io.Writer
	pending []byte
}

func newResponder(w io.Writer) *responder {
	return &responder{w: w, pending: make([]byte, 0, 2*responderTail)}
}

func (r *responder) feed(chunk []byte) {
	r.pending = append(r.pending, chunk...)
	for r.answerOne() {
	}
	if len(r.pending) > responderWindow {
		r.pending = append(r.pending[:0], r.pending[len(r.pending)-responderTail:]...)
	}
}

// answerOne replies to the earliest query in the buffer.
func (r *responder) answerOne() bool {
	first, at := -1, -1
	for i, probe := range probeReplies {
		idx := bytes.Index(r.pending, probe.query)
		if idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	probe := probeReplies[first]
	r.pending = r.pending[at+len(probe.query):]
	_, _ = r.w.Write(probe.reply)
	return true
}
