package webapi

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
	"github.com/google/uuid"
)

// maxRandomBytes is the getRandomValues quota from the Web Crypto API.
const maxRandomBytes = 65536

// cryptoJS installs crypto.getRandomValues and crypto.randomUUID. Bundles use
// them for keys and ids; crypto.subtle is not provided.
const cryptoJS = `
(function() {
	var c = globalThis.crypto || {};
	c.getRandomValues = function(ta) {
		if (!ta || !ArrayBuffer.isView(ta) || ta instanceof Float32Array || ta instanceof Float64Array) {
			throw new TypeError('getRandomValues requires an integer TypedArray');
		}
		var bytes = new Uint8Array(ta.buffer, ta.byteOffset, ta.byteLength);
		if (bytes.length === 0) return ta;
		var raw = atob(__cryptoRandomBytes(bytes.length));
		for (var i = 0; i < bytes.length; i++) bytes[i] = raw.charCodeAt(i);
		return ta;
	};
	c.randomUUID = function() { return __cryptoRandomUUID(); };
	globalThis.crypto = c;
})();
`

// SetupCrypto registers the Go-backed random sources. Requires SetupEncoding.
func SetupCrypto(rt core.JSRuntime, _ *eventloop.EventLoop) error {
	if err := rt.RegisterFunc("__cryptoRandomBytes", randomBytes); err != nil {
		return err
	}
	if err := rt.RegisterFunc("__cryptoRandomUUID", uuid.NewString); err != nil {
		return err
	}
	if err := rt.Eval(cryptoJS); err != nil {
		return fmt.Errorf("evaluating crypto.js: %w", err)
	}
	return nil
}

// randomBytes returns n random bytes, base64 encoded.
func randomBytes(n int) (string, error) {
	if n <= 0 || n > maxRandomBytes {
		return "", fmt.Errorf("getRandomValues: byte length must be 1-%d", maxRandomBytes)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
