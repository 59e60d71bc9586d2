package provider

import "strings"

// gsmTable maps characters outside the pass-through set to their GSM 03.38
// default alphabet byte(s). Accented letters without a GSM code point fold
// to their base letter.
var gsmTable = map[rune]string{
	'\n': "\x0A",
	'\r': "\x0D",
	'$':  "\x02",
	'@':  "\x00",

	0x10: "\x10",
	0x12: "\x12",
	0x13: "\x13",
	0x14: "\x14",
	0x15: "\x15",
	0x16: "\x16",
	0x17: "\x17",
	0x18: "\x18",
	0x19: "\x19",
	0x1A: "\x1A",

	'[':  "\x1B\x3C",
	'\\': "\x1B\x2F",
	']':  "\x1B\x3E",
	'^':  "\x1B\x14",
	'_':  "\x11",
	'{':  "\x1B\x28",
	'|':  "\x1B\x40",
	'}':  "\x1B\x29",
	'~':  "\x1B\x3D",
	'€':  "\x1B\x65",
	'¤':  "\x1B\x65",

	'¡': "\x40",
	'£': "\x01",
	'¥': "\x03",
	'§': "\x5F",
	'¿': "\x60",

	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A",
	'Ä': "\x5B",
	'Å': "\x0E",
	'Æ': "\x1C",
	'Ç': "\x09",
	'È': "E",
	'É': "\x1F",
	'Ê': "E", 'Ë': "E",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I",
	'Ð': "D",
	'Ñ': "\x5D",
	'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O",
	'Ö': "\x5C",
	'Ø': "\x0B",
	'Ù': "U", 'Ú': "U", 'Û': "U",
	'Ü': "\x5E",
	'Ý': "Y",
	'ß': "\x1E",

	'à': "\x7F",
	'á': "a", 'â': "a", 'ã': "a",
	'ä': "\x7B",
	'å': "\x0F",
	'æ': "\x1D",
	'ç': "c",
	'è': "\x04",
	'é': "\x05",
	'ê': "e", 'ë': "e",
	'ì': "\x07",
	'í': "i", 'î': "i", 'ï': "i",
	'ð': "d",
	'ñ': "\x7D",
	'ò': "\x08",
	'ó': "o", 'ô': "o", 'õ': "o",
	'ö': "\x7C",
	'ø': "\x0C",
	'ù': "\x06",
	'ú': "u", 'û': "u",
	'ü': "\x7E",
	'ý': "y",
}

func gsmPassThrough(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(` !/#%&"=-'<>?()*+,.;:`, r)
}

// GSMEncode transcodes text into GSM 03.38 bytes. Characters with no
// representation become a space.
func GSMEncode(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if gsmPassThrough(r) {
			b.WriteRune(r)
			continue
		}
		if enc, ok := gsmTable[r]; ok {
			b.WriteString(enc)
			continue
		}
		b.WriteByte(' ')
	}

	return b.String()
}
