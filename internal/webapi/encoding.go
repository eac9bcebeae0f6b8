package webapi

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// textCodecJS implements TextEncoder/TextDecoder for UTF-8 only, which is
// all react-dom/server asks of them.
const textCodecJS = `
(function() {
	function encode(str) {
		str = String(str === undefined ? '' : str);
		var out = [];
		for (var i = 0; i < str.length; i++) {
			var c = str.charCodeAt(i);
			if (c >= 0xD800 && c <= 0xDBFF && i + 1 < str.length) {
				var n = str.charCodeAt(i + 1);
				if (n >= 0xDC00 && n <= 0xDFFF) {
					c = 0x10000 + ((c - 0xD800) << 10) + (n - 0xDC00);
					i++;
				} else {
					c = 0xFFFD;
				}
			} else if (c >= 0xD800 && c <= 0xDFFF) {
				c = 0xFFFD;
			}
			if (c < 0x80) {
				out.push(c);
			} else if (c < 0x800) {
				out.push(0xC0 | (c >> 6), 0x80 | (c & 63));
			} else if (c < 0x10000) {
				out.push(0xE0 | (c >> 12), 0x80 | ((c >> 6) & 63), 0x80 | (c & 63));
			} else {
				out.push(0xF0 | (c >> 18), 0x80 | ((c >> 12) & 63), 0x80 | ((c >> 6) & 63), 0x80 | (c & 63));
			}
		}
		return new Uint8Array(out);
	}

	function decode(bytes) {
		var s = '';
		var i = 0;
		while (i < bytes.length) {
			var b = bytes[i];
			var need = 0, cp = 0;
			if (b < 0x80) { cp = b; }
			else if ((b & 0xE0) === 0xC0) { need = 1; cp = b & 31; }
			else if ((b & 0xF0) === 0xE0) { need = 2; cp = b & 15; }
			else if ((b & 0xF8) === 0xF0) { need = 3; cp = b & 7; }
			else { s += '\uFFFD'; i++; continue; }
			if (need && i + need >= bytes.length) { s += '\uFFFD'; break; }
			var ok = true;
			for (var k = 1; k <= need; k++) {
				var nb = bytes[i + k];
				if ((nb & 0xC0) !== 0x80) { ok = false; break; }
				cp = (cp << 6) | (nb & 63);
			}
			if (!ok) { s += '\uFFFD'; i++; continue; }
			i += need + 1;
			s += String.fromCodePoint(cp);
		}
		return s;
	}

	class TextEncoder {
		get encoding() { return 'utf-8'; }
		encode(input) { return encode(input); }
		encodeInto(input, dest) {
			var bytes = encode(input);
			var n = Math.min(bytes.length, dest.length);
			dest.set(bytes.subarray(0, n));
			return { read: String(input).length, written: n };
		}
	}

	class TextDecoder {
		constructor(label) {
			var l = String(label === undefined ? 'utf-8' : label).toLowerCase();
			if (l !== 'utf-8' && l !== 'utf8') {
				throw new RangeError('TextDecoder: unsupported encoding ' + l);
			}
		}
		get encoding() { return 'utf-8'; }
		decode(input) {
			if (input === undefined) return '';
			if (input instanceof ArrayBuffer) return decode(new Uint8Array(input));
			if (ArrayBuffer.isView(input)) return decode(new Uint8Array(input.buffer, input.byteOffset, input.byteLength));
			throw new TypeError('TextDecoder.decode: input must be a BufferSource');
		}
	}

	globalThis.TextEncoder = TextEncoder;
	globalThis.TextDecoder = TextDecoder;
	globalThis.btoa = function(data) { return __btoa(String(data)); };
	globalThis.atob = function(data) { return __atob(String(data)); };
})();
`

// btoa encodes a Latin-1 string as base64.
func btoa(s string) (string, error) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return "", fmt.Errorf("string contains characters outside of the Latin1 range")
		}
		buf = append(buf, byte(r))
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// atob decodes base64 into a Latin-1 string, ignoring ASCII whitespace and
// tolerating missing padding.
func atob(s string) (string, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")
	data, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid base64 string")
	}
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String(), nil
}

// SetupEncoding installs TextEncoder, TextDecoder, atob and btoa.
func SetupEncoding(rt core.JSRuntime, _ *eventloop.EventLoop) error {
	if err := rt.RegisterFunc("__btoa", btoa); err != nil {
		return err
	}
	if err := rt.RegisterFunc("__atob", atob); err != nil {
		return err
	}
	if err := rt.Eval(textCodecJS); err != nil {
		return fmt.Errorf("evaluating textcodec.js: %w", err)
	}
	return nil
}
