package starbind

import (
	"bytes"
	"strings"
	"testing"

	"go.starlark.net/starlark"

	"github.com/spinifex/uvarint/pkg/uvarint"
)

func execScript(t *testing.T, mode uvarint.DecodeMode, src string) (starlark.StringDict, string, error) {
	t.Helper()
	var out bytes.Buffer
	env := New(&out, func() uvarint.DecodeMode { return mode })
	globals, err := env.Execute("test.star", src)
	return globals, out.String(), err
}

func TestEncodeDecode(t *testing.T) {
	globals, _, err := execScript(t, uvarint.Strict, `
enc = encode(300)
big = encode(MAX_VALUE)
dec = decode(b"\xac\x02")
s = uv_format("0x12c")
n = uv_len(1 << 64)
`)
	if err != nil {
		t.Fatal(err)
	}
	if enc := globals["enc"]; enc != starlark.Bytes("\xac\x02") {
		t.Errorf("unexpected encoding %v", enc)
	}
	if big := globals["big"].(starlark.Bytes); len(big) != uvarint.MaxLen {
		t.Errorf("unexpected encoding of MAX_VALUE %v", big)
	}
	if dec, _ := starlark.AsInt32(globals["dec"]); dec != 300 {
		t.Errorf("unexpected decoded value %v", globals["dec"])
	}
	if s := globals["s"]; s != starlark.String("uv300") {
		t.Errorf("unexpected format %v", s)
	}
	if n, _ := starlark.AsInt32(globals["n"]); n != 10 {
		t.Errorf("unexpected length %v", globals["n"])
	}
}

func TestDecodeModes(t *testing.T) {
	_, _, err := execScript(t, uvarint.Strict, `decode(b"\xac\x02\x01")`)
	if err == nil || !strings.Contains(err.Error(), "trailing bytes") {
		t.Fatalf("expected trailing bytes error, got %v", err)
	}

	globals, _, err := execScript(t, uvarint.Lenient, `x = decode(b"\xac\x02\x01")`)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := starlark.AsInt32(globals["x"]); x != 300 {
		t.Errorf("unexpected lenient result %v", globals["x"])
	}

	globals, _, err = execScript(t, uvarint.Strict, `x = decode(b"\x80", strict=False)`)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := starlark.AsInt32(globals["x"]); x != 0 {
		t.Errorf("unexpected lenient result %v", globals["x"])
	}
}

func TestErrors(t *testing.T) {
	for _, src := range []string{
		`encode(1 << 63)`,
		`encode(-1)`,
		`encode([])`,
		`encode("nope")`,
		`decode(b"\x80\x80\x80\x80\x80\x80\x80\x80\x80\x01")`,
		`decode("ac02")`,
	} {
		if _, _, err := execScript(t, uvarint.Strict, src); err == nil {
			t.Errorf("expected error from %s", src)
		}
	}
}

func TestPrintAndHelp(t *testing.T) {
	_, out, err := execScript(t, uvarint.Strict, `
print(uv_format(16384), encode(16384))
print(repr(encode(300)))
help("encode")
`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "uv16384 \x80\x80\x01\nb\"\\xac\\x02\"\n") {
		t.Errorf("unexpected print output %q", out)
	}
	if !strings.Contains(out, "encode(n)") {
		t.Errorf("missing help output in %q", out)
	}
}
