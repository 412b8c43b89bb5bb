// Package report writes one diagnostic line per interval listing every
// channel's pulse width and the actuation mode, to stdout or a serial port.
package report

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/tarm/serial"

	"github.com/sweeney/rc-lights/internal/channel"
	"github.com/sweeney/rc-lights/internal/logic"
)

// Reporter writes diagnostic lines to a sink.
type Reporter struct {
	w      io.Writer
	eol    string
	failed bool
	lines  uint64
}

// New creates a Reporter that terminates lines with "\n".
func New(w io.Writer) *Reporter {
	return &Reporter{w: w, eol: "\n"}
}

// FormatLine renders the widths and mode, for example
// "CH0: 1500 | CH1: 1500 | CH2: 1500 | LIVE".
func FormatLine(samples []channel.Sample, mode logic.Mode) string {
	var b strings.Builder
	for i, s := range samples {
		fmt.Fprintf(&b, "CH%d: %d | ", i, s.Width)
	}
	if mode == "" {
		mode = "UNKNOWN"
	}
	b.WriteString(string(mode))
	return b.String()
}

// Report writes one line. A write error is returned and logged once until
// the sink accepts a line again.
func (r *Reporter) Report(samples []channel.Sample, mode logic.Mode) error {
	_, err := io.WriteString(r.w, FormatLine(samples, mode)+r.eol)
	if err != nil {
		if !r.failed {
			r.failed = true
			log.Printf("report: write failed: %v", err)
		}
		return fmt.Errorf("write report: %w", err)
	}
	if r.failed {
		r.failed = false
		log.Printf("report: sink recovered")
	}
	r.lines++
	return nil
}

// Lines returns the number of lines written successfully.
func (r *Reporter) Lines() uint64 {
	return r.lines
}

// SerialSink is a Reporter writing to a serial port.
type SerialSink struct {
	*Reporter
	port *serial.Port
}

// OpenSerial opens the named serial port at baud and returns a Reporter
// using CRLF line endings, as serial terminals expect.
func OpenSerial(name string, baud int) (*SerialSink, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	r := New(port)
	r.eol = "\r\n"
	return &SerialSink{Reporter: r, port: port}, nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	return s.port.Close()
}
