package modem

// Message is the committed text payload. It is never modified after
// construction; a new commit replaces it.
type Message struct {
	data []byte
}

// NewMessage copies b into a new Message.
func NewMessage(b []byte) Message {
	data := make([]byte, len(b))
	copy(data, b)
	return Message{data: data}
}

// Len returns the message length in bytes.
func (m Message) Len() int {
	return len(m.data)
}

// Empty reports whether nothing has been committed.
func (m Message) Empty() bool {
	return len(m.data) == 0
}

// Bytes returns a copy of the payload.
func (m Message) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// String returns the payload as text.
func (m Message) String() string {
	return string(m.data)
}

// Symbol returns the symbol at index using bitsPerSymbol-wide symbols.
func (m Message) Symbol(index, bitsPerSymbol int) int {
	return SymbolAt(index, m.data, bitsPerSymbol)
}

// TotalSymbols returns how many whole symbols the message carries. A
// non-empty message always carries at least one symbol.
func (m Message) TotalSymbols(bitsPerSymbol int) int {
	if len(m.data) == 0 || bitsPerSymbol <= 0 {
		return 0
	}
	n := len(m.data) * 8 / bitsPerSymbol
	if n == 0 {
		n = 1
	}
	return n
}

// SymbolAt extracts the bitsPerSymbol-wide symbol at index from msg, read as
// a big-endian bitstream (MSB first within each byte). Symbols starting past
// the end are zero; a symbol straddling the end keeps only the bits that
// exist, so "01" read as a 16-bit symbol is 1.
func SymbolAt(index int, msg []byte, bitsPerSymbol int) int {
	if index < 0 || bitsPerSymbol <= 0 {
		return 0
	}
	start := index * bitsPerSymbol
	if start/8 >= len(msg) {
		return 0
	}

	symbol := 0
	for i := 0; i < bitsPerSymbol; i++ {
		bitIndex := start + i
		byteIndex := bitIndex / 8
		if byteIndex >= len(msg) {
			continue
		}
		bit := int(msg[byteIndex]>>(7-bitIndex%8)) & 1
		symbol = (symbol << 1) | bit
	}
	return symbol
}
