// pkg/gzmember/scanner.go

package gzmember

// HeaderLen is the size of the fixed part of a gzip member header.
const HeaderLen = 10

const (
	id1        = 0x1f
	id2        = 0x8b
	cmDeflate  = 0x08
	flgReserve = 0xe0
	osMax      = 0x0d // highest OS id defined by RFC 1952
	osUnknown  = 0xff
)

// IsHeaderAt reports whether a gzip member header (RFC 1952, section 2.3.1)
// starts at buf[index]. MTIME and XFL are not checked.
func IsHeaderAt(buf []byte, index int) bool {
	if buf == nil {
		panic("gzmember: nil buffer")
	}
	if index < 0 || index+HeaderLen > len(buf) {
		return false
	}
	h := buf[index : index+HeaderLen]
	return h[0] == id1 &&
		h[1] == id2 &&
		h[2] == cmDeflate &&
		h[3]&flgReserve == 0 &&
		(h[9] <= osMax || h[9] == osUnknown)
}

// FindNextHeader returns the first index >= from where a member header
// starts, or -1. A match is only reported if the whole header fits in buf.
func FindNextHeader(buf []byte, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+HeaderLen <= len(buf); i++ {
		if buf[i] != id1 {
			continue
		}
		if IsHeaderAt(buf, i) {
			return i
		}
	}
	return -1
}
