package input

import (
	"bufio"
	"io"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Primary    int  // Space, Enter and left clicks seen this frame
	Close      bool // Esc or q
	SwitchMode bool // Tab: toggle <-> steer
	Left       bool // Held
	Right      bool // Held
	Mouse      bool // A pointer position was reported this frame
	MouseCol   int  // 1-based terminal column of the last pointer report
	MouseRow   int  // 1-based terminal row of the last pointer report
	Click      bool // Left button pressed this frame
	Pressed    []byte
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// Decoder turns raw terminal bytes into per-frame Input.
// It keeps held-key timestamps and any escape sequence cut off at the end
// of a frame between calls.
type Decoder struct {
	state keyState
	carry []byte
}

// Stream delivers input bytes via a channel and decodes them once per frame.
type Stream struct {
	ch      chan byte
	decoder Decoder
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &Stream{ch: make(chan byte, 256)}
	go func() {
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reports Close.
func ReadInput(s *Stream) Input {
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.decoder.Decode(buf, time.Now())
	if closed {
		in.Close = true
	}
	return in
}

// ResetKeyInput forgets held keys, e.g. after a state change.
func ResetKeyInput(s *Stream) {
	s.decoder.Reset()
}

// Reset forgets held keys.
func (d *Decoder) Reset() {
	d.state = keyState{}
}

// maxCarry bounds a pending escape sequence; longer garbage is dropped.
const maxCarry = 32

// Decode parses one frame worth of bytes.
// Handles arrow keys, SGR mouse reports and single-byte keys. Unknown CSI
// sequences are skipped. A sequence cut off at the end of buf is kept and
// completed by the next call; a trailing ESC closes only if the next frame
// does not continue it.
func (d *Decoder) Decode(buf []byte, now time.Time) Input {
	in := Input{Pressed: buf}

	if len(d.carry) > 0 {
		if len(d.carry) == 1 && (len(buf) == 0 || (buf[0] != '[' && buf[0] != 'O')) {
			in.Close = true
			d.carry = d.carry[:0]
		} else {
			buf = append(d.carry, buf...)
			d.carry = nil
		}
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			d.applyByte(&in, b, now)
			continue
		}

		if i+1 == len(buf) {
			d.hold(buf[i:])
			break
		}

		switch buf[i+1] {
		case '[':
			n, complete := csiLength(buf[i+2:])
			if !complete {
				d.hold(buf[i:])
				i = len(buf)
				continue
			}
			d.applyCSI(&in, buf[i+2:i+2+n], now)
			i += 1 + n
		case 'O': // SS3, arrows in application cursor mode
			if i+2 == len(buf) {
				d.hold(buf[i:])
				i = len(buf)
				continue
			}
			d.applyCSI(&in, buf[i+2:i+3], now)
			i += 2
		default:
			in.Close = true
		}
	}

	in.Left = now.Sub(d.state.left) < keyHoldDuration
	in.Right = now.Sub(d.state.right) < keyHoldDuration
	return in
}

// hold keeps an unfinished escape sequence for the next frame.
func (d *Decoder) hold(seq []byte) {
	if len(seq) > maxCarry {
		d.carry = nil
		return
	}
	d.carry = append([]byte(nil), seq...)
}

// csiLength returns the length of the CSI body in buf (parameter and
// intermediate bytes plus the final byte) and whether it is complete.
// A byte outside the CSI ranges ends the sequence early.
func csiLength(buf []byte) (int, bool) {
	for i, b := range buf {
		switch {
		case b >= 0x20 && b <= 0x3f:
			continue
		case b >= 0x40 && b <= 0x7e:
			return i + 1, true
		default:
			return i, true
		}
	}
	return len(buf), false
}

// applyCSI interprets a complete CSI body (everything after "ESC [").
func (d *Decoder) applyCSI(in *Input, body []byte, now time.Time) {
	if len(body) == 0 {
		return
	}
	if body[0] == '<' {
		parseSGRMouse(body[1:], in)
		return
	}
	switch body[len(body)-1] {
	case 'C': // Right arrow, with or without modifiers
		d.state.right = now
	case 'D': // Left arrow
		d.state.left = now
	}
}

// applyByte handles a single key press.
func (d *Decoder) applyByte(in *Input, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x1b', '\x03':
		in.Close = true
	case ' ', '\n', '\r':
		in.Primary++
	case '\t':
		in.SwitchMode = true
	case 'a', 'A', 'h', 'H':
		d.state.left = now
	case 'd', 'D', 'l', 'L':
		d.state.right = now
	}
}

// parseSGRMouse parses "b;col;row" followed by M (press/motion) or m (release).
// It returns the bytes consumed after "ESC [ <".
func parseSGRMouse(buf []byte, in *Input) (int, bool) {
	var fields [3]int
	field := 0
	digits := 0
	for i, b := range buf {
		switch {
		case b >= '0' && b <= '9':
			fields[field] = fields[field]*10 + int(b-'0')
			digits++
		case b == ';':
			if digits == 0 || field == 2 {
				return 0, false
			}
			field++
			digits = 0
		case b == 'M' || b == 'm':
			if field != 2 || digits == 0 {
				return 0, false
			}
			button, col, row := fields[0], fields[1], fields[2]
			in.Mouse = true
			in.MouseCol = col
			in.MouseRow = row
			// Low bits select the button, 32 flags motion, 64 flags the wheel.
			if b == 'M' && button&3 == 0 && button&(32|64) == 0 {
				in.Click = true
				in.Primary++
			}
			return i + 1, true
		default:
			return 0, false
		}
	}
	return 0, false
}
