package starbind

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"

	num "github.com/shabbyrobe/go-num"

	"github.com/spinifex/uvarint/pkg/logflags"
	"github.com/spinifex/uvarint/pkg/uvarint"
)

const (
	encodeBuiltinName = "encode"
	decodeBuiltinName = "decode"
	lenBuiltinName    = "uv_len"
	formatBuiltinName = "uv_format"
	helpBuiltinName   = "help"

	maxLenName   = "MAX_LEN"
	maxValueName = "MAX_VALUE"
)

func init() {
	resolve.AllowNestedDef = true
	resolve.AllowLambda = true
	resolve.AllowSet = true
	resolve.AllowBitwise = true
	resolve.AllowRecursion = true
	resolve.AllowGlobalReassign = true
}

// Env is the environment used to evaluate starlark scripts.
type Env struct {
	env  starlark.StringDict
	doc  map[string]string
	mode func() uvarint.DecodeMode
	out  io.Writer
	log  logflags.Logger
}

// New creates a new starlark binding environment. Scripts print to out;
// mode returns the decode mode used by decode when the script does not
// choose one.
func New(out io.Writer, mode func() uvarint.DecodeMode) *Env {
	env := &Env{
		env:  starlark.StringDict{},
		doc:  map[string]string{},
		mode: mode,
		out:  out,
		log:  logflags.ScriptLogger(),
	}
	if env.mode == nil {
		env.mode = func() uvarint.DecodeMode { return uvarint.Strict }
	}

	builtindoc := func(name, args, descr string) {
		env.doc[name] = name + args + "\n\n" + name + " " + descr
	}

	env.env[encodeBuiltinName] = starlark.NewBuiltin(encodeBuiltinName, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var n starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
			return nil, err
		}
		v, err := toValue(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Name(), err)
		}
		enc, err := v.Bytes()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Name(), err)
		}
		return starlark.Bytes(enc), nil
	})
	builtindoc(encodeBuiltinName, "(n)", "returns the varint encoding of n as bytes.")

	env.env[decodeBuiltinName] = starlark.NewBuiltin(decodeBuiltinName, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var (
			data   starlark.Bytes
			strict starlark.Value = starlark.None
		)
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "b", &data, "strict?", &strict); err != nil {
			return nil, err
		}
		mode := env.mode()
		if strict != starlark.None {
			mode = uvarint.Lenient
			if strict.Truth() {
				mode = uvarint.Strict
			}
		}
		v, err := mode.Decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Name(), err)
		}
		return toStarlarkInt(v), nil
	})
	builtindoc(decodeBuiltinName, "(b, strict=None)", "decodes the varint in bytes b. When strict is not given the current decode mode is used.")

	env.env[lenBuiltinName] = starlark.NewBuiltin(lenBuiltinName, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var n starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
			return nil, err
		}
		v, err := toValue(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Name(), err)
		}
		return starlark.MakeInt(v.Len()), nil
	})
	builtindoc(lenBuiltinName, "(n)", "returns the number of bytes of the minimal encoding of n, which may exceed MAX_LEN.")

	env.env[formatBuiltinName] = starlark.NewBuiltin(formatBuiltinName, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var n starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n); err != nil {
			return nil, err
		}
		v, err := toValue(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Name(), err)
		}
		return starlark.String(v.String()), nil
	})
	builtindoc(formatBuiltinName, "(n)", "returns the display form of n, for example uv300.")

	env.env[helpBuiltinName] = starlark.NewBuiltin(helpBuiltinName, func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		switch len(args) {
		case 0:
			names := make([]string, 0, len(env.doc))
			for name := range env.doc {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(env.out, strings.Join(names, "\n"))
		case 1:
			name, ok := args[0].(starlark.String)
			if !ok {
				return nil, errors.New("argument of help must be a string")
			}
			d, ok := env.doc[string(name)]
			if !ok {
				return nil, fmt.Errorf("no help for %s", name)
			}
			fmt.Fprintln(env.out, d)
		default:
			return nil, errors.New("too many arguments")
		}
		return starlark.None, nil
	})
	builtindoc(helpBuiltinName, "(name)", "prints help for the given builtin.")

	env.env[maxLenName] = starlark.MakeInt(uvarint.MaxLen)
	env.env[maxValueName] = starlark.MakeUint64(uvarint.MaxValue)

	return env
}

// Execute runs the script at path. If source is not nil it is used instead
// of the contents of the file, see starlark.ExecFile. The globals defined by
// the script are returned.
func (env *Env) Execute(path string, source interface{}) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: "uvarint",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(env.out, msg)
		},
	}
	env.log.WithField("file", path).Debug("executing script")
	globals, err := starlark.ExecFile(thread, path, source, env.env)
	if err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok && logflags.Script() {
			env.log.WithField("file", path).Debug(evalErr.Backtrace())
		}
		return nil, err
	}
	return globals, nil
}

// toValue converts a starlark int, or a string accepted by uvarint.Parse, to
// a Value.
func toValue(x starlark.Value) (uvarint.Value, error) {
	switch x := x.(type) {
	case starlark.Int:
		bi := x.BigInt()
		if bi.Sign() < 0 {
			return uvarint.Value{}, fmt.Errorf("negative value %v", x)
		}
		n, accurate := num.U128FromBigInt(bi)
		if !accurate {
			return uvarint.Value{}, fmt.Errorf("value %v does not fit in 128 bits", x)
		}
		return uvarint.New(n), nil
	case starlark.String:
		return uvarint.Parse(string(x))
	}
	return uvarint.Value{}, fmt.Errorf("expected int or string, got %s", x.Type())
}

// toStarlarkInt converts a decoded value, which never exceeds MaxValue.
func toStarlarkInt(v uvarint.Value) starlark.Value {
	n, _ := v.Uint64()
	return starlark.MakeUint64(n)
}
