package logflags

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMakeLogger_usingLoggerFactory(t *testing.T) {
	if loggerFactory != nil {
		t.Fatalf("expected loggerFactory to be nil; but was <%v>", loggerFactory)
	}
	defer func() {
		loggerFactory = nil
	}()
	if logOut != nil {
		t.Fatalf("expected logOut to be nil; but was <%v>", logOut)
	}
	logOut = &bufferWriter{}
	defer func() {
		logOut = nil
	}()

	expectedLogger := &logrusLogger{}
	SetLoggerFactory(func(level logrus.Level, fields Fields, out io.Writer) Logger {
		if level != logrus.TraceLevel {
			t.Fatalf("expected level to be <%v>; but was <%v>", logrus.TraceLevel, level)
		}
		if len(fields) != 1 || fields["foo"] != "bar" {
			t.Fatalf("expected fields to be {'foo':'bar'}; but was <%v>", fields)
		}
		if out != logOut {
			t.Fatalf("expected out to be <%v>; but was <%v>", logOut, out)
		}
		return expectedLogger
	})

	actual := makeLogger(logrus.TraceLevel, Fields{"foo": "bar"})
	if actual != expectedLogger {
		t.Fatalf("expected actual to <%v>; but was <%v>", expectedLogger, actual)
	}
}

func TestMakeFlaggableLogger(t *testing.T) {
	for _, flag := range []bool{false, true} {
		actual := makeFlaggableLogger(flag, Fields{"foo": "bar"})
		actualEntry, expectedType := actual.(*logrusLogger)
		if !expectedType {
			t.Fatalf("expected actual to be of type <%v>; but was <%v>", reflect.TypeOf((*logrusLogger)(nil)), reflect.TypeOf(actual))
		}
		expectedLevel := logrus.ErrorLevel
		if flag {
			expectedLevel = logrus.DebugLevel
		}
		if actualEntry.Entry.Logger.Level != expectedLevel {
			t.Fatalf("expected level to be <%v>; but was <%v>", expectedLevel, actualEntry.Logger.Level)
		}
		if len(actualEntry.Entry.Data) != 1 || actualEntry.Data["foo"] != "bar" {
			t.Fatalf("expected actualEntry.Entry.Data to be {'foo':'bar'}; but was <%v>", actualEntry.Data)
		}
		if actualEntry.Entry.Logger.Formatter != textFormatterInstance {
			t.Fatalf("expected formatter to be <%v>; but was <%v>", textFormatterInstance, actualEntry.Logger.Formatter)
		}
	}
}

func TestSetup(t *testing.T) {
	defer reset()

	if err := Setup(false, "cli", ""); err != errLogstrWithoutLog {
		t.Fatalf("expected errLogstrWithoutLog, got %v", err)
	}
	if err := Setup(true, "bogus", ""); err == nil {
		t.Fatal("expected error for unknown log output")
	}
	reset()

	if err := Setup(true, "", ""); err != nil {
		t.Fatal(err)
	}
	if !CLI() || Terminal() || Script() || Config() {
		t.Fatalf("wrong defaults: cli=%v terminal=%v script=%v config=%v", CLI(), Terminal(), Script(), Config())
	}
	reset()

	if err := Setup(true, "terminal, script,config", ""); err != nil {
		t.Fatal(err)
	}
	if CLI() || !Terminal() || !Script() || !Config() {
		t.Fatalf("wrong flags: cli=%v terminal=%v script=%v config=%v", CLI(), Terminal(), Script(), Config())
	}
}

func TestSetupLogDest(t *testing.T) {
	defer reset()
	dest := filepath.Join(t.TempDir(), "uvarint.log")
	if err := Setup(true, "config", dest); err != nil {
		t.Fatal(err)
	}
	ConfigLogger().WithField("file", "config.yml").Debugf("loaded")
	Close()

	buf, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	out := string(buf)
	if !strings.Contains(out, "loaded") || !strings.Contains(out, "layer=config") || !strings.Contains(out, "file=config.yml") {
		t.Fatalf("unexpected log output %q", out)
	}
}

type bufferWriter struct {
	bytes.Buffer
}

func (bw bufferWriter) Close() error {
	return nil
}
