package logging

import (
	"context"
	"testing"

	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if fields == nil {
		fields = map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "attitude.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger = WithFields(logger, map[string]any{"slug": "x"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := StoreLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != storeModule {
		t.Fatalf("expected module %s, got %v", storeModule, provider.requested)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}
	if got := rec.fields[0]["module"]; got != storeModule {
		t.Fatalf("expected module field %s, got %v", storeModule, got)
	}

	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
	if rec.fields[0]["module"] != rootModule {
		t.Fatalf("expected module field %s, got %v", rootModule, rec.fields[0]["module"])
	}
}

func TestCommandsLoggerNamesSubModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = CommandsLogger(provider, "articles")
	_ = CommandsLogger(provider, " ")

	want := []string{"attitude.commands.articles", commandsModule}
	if len(provider.requested) != 2 || provider.requested[0] != want[0] || provider.requested[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, provider.requested)
	}
}

func TestWithRecordContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithRecordContext(rec, "articles", "", "/content/articles/a.mdx")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields["collection"] != "articles" || fields["path"] != "/content/articles/a.mdx" {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if _, ok := fields["slug"]; ok {
		t.Fatalf("empty slug should be skipped, got %#v", fields)
	}
}

func TestWithErrorIgnoresNil(t *testing.T) {
	rec := &recordingLogger{}
	if got := WithError(rec, nil); got != rec {
		t.Fatalf("expected logger unchanged for nil error")
	}
	if len(rec.fields) != 0 {
		t.Fatalf("expected no fields recorded, got %v", rec.fields)
	}
}
