package systems

// Side-channel decoder constants.
const (
	BitsPerChar     = 7
	MessageCapacity = 128
	MinPrintable    = 32

	// messageLimit keeps the last slot of the message storage free.
	messageLimit = MessageCapacity - 1
)

// BufferResult reports what a bit-buffer operation did.
type BufferResult uint8

const (
	// BufferPending means the bit was stored and fewer than 7 are buffered.
	BufferPending BufferResult = iota
	// BufferDecoded means a character was appended to the message.
	BufferDecoded
	// BufferCapacityExceeded means a character was decoded but the message
	// was full, so it was dropped.
	BufferCapacityExceeded
)

// String returns a readable name for the result.
func (r BufferResult) String() string {
	switch r {
	case BufferPending:
		return "pending"
	case BufferDecoded:
		return "decoded"
	case BufferCapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown"
	}
}

// BitDecoder packs bits MSB-first and turns every 7 of them into one
// character of a bounded message.
type BitDecoder struct {
	buffer  int
	count   int
	message [MessageCapacity]byte
	cursor  int
	dropped int

	// fakeText replaces decoded characters slot by slot when set.
	fakeText string
}

// Push appends one bit (only its low bit is used). When the seventh bit
// arrives the buffer is decoded and cleared before Push returns.
func (d *BitDecoder) Push(bit int) BufferResult {
	d.buffer = d.buffer<<1 | bit&1
	d.count++

	if d.count < BitsPerChar {
		return BufferPending
	}
	res := d.Process()
	d.Clear()
	return res
}

// Process decodes the current buffer into one character and appends it.
// Values below MinPrintable are stored as a space. Once the message holds
// MessageCapacity-1 characters further ones are dropped.
func (d *BitDecoder) Process() BufferResult {
	c := byte(d.buffer & 0x7f)
	if c < MinPrintable {
		c = MinPrintable
	}
	if d.cursor >= messageLimit {
		d.dropped++
		return BufferCapacityExceeded
	}
	if d.cursor < len(d.fakeText) {
		c = d.fakeText[d.cursor]
	}
	d.message[d.cursor] = c
	d.cursor++
	return BufferDecoded
}

// Clear resets the bit buffer and its counter. The message is kept.
func (d *BitDecoder) Clear() {
	d.buffer = 0
	d.count = 0
}

// Buffer returns the partially accumulated value (0..127).
func (d *BitDecoder) Buffer() int { return d.buffer }

// Count returns how many bits are buffered (0..6).
func (d *BitDecoder) Count() int { return d.count }

// Message returns the decoded characters so far.
func (d *BitDecoder) Message() string { return string(d.message[:d.cursor]) }

// Len returns the number of decoded characters stored.
func (d *BitDecoder) Len() int { return d.cursor }

// Dropped returns how many decoded characters did not fit.
func (d *BitDecoder) Dropped() int { return d.dropped }

// Last returns the most recently stored character, if any.
func (d *BitDecoder) Last() (byte, bool) {
	if d.cursor == 0 {
		return 0, false
	}
	return d.message[d.cursor-1], true
}
