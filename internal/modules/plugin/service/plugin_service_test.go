package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	insightsdto "tally/internal/modules/insights/dto"
	"tally/internal/modules/plugin/domain"
	"tally/internal/modules/plugin/dto"
	"tally/internal/modules/plugin/service"
	transferdto "tally/internal/modules/transfer/dto"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	commands []domain.CommandDescriptor
	lastReq  *domain.ExecuteRequest
}

func (*fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (*fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "1"}, nil
}
func (h *fakeHost) ListCommands(context.Context, domain.Manifest) ([]domain.CommandDescriptor, error) {
	return h.commands, nil
}
func (h *fakeHost) Execute(_ context.Context, _ domain.Manifest, req domain.ExecuteRequest) (domain.ExecuteResult, error) {
	h.lastReq = &req
	return domain.ExecuteResult{Stdout: "ok", ExitCode: 0}, nil
}
func (*fakeHost) PrepareTTY(context.Context, domain.Manifest, domain.ExecuteRequest) (domain.TTYPlan, error) {
	return domain.TTYPlan{Argv: []string{"/bin/echo", "ok"}, Cwd: "/"}, nil
}

type fakeInsights struct{}

func (fakeInsights) TagReport(_ context.Context, input insightsdto.ReportInput) (insightsdto.TagReport, error) {
	return insightsdto.TagReport{TagName: input.TagName, Stats: insightsdto.Statistics{Count: 3, Mean: 42}}, nil
}

type fakeTransfer struct{}

func (fakeTransfer) Validate(context.Context, string) (transferdto.ValidationOutput, error) {
	return transferdto.ValidationOutput{Valid: true}, nil
}
func (fakeTransfer) Import(context.Context, string) (transferdto.ImportOutcome, error) {
	return transferdto.ImportOutcome{}, nil
}
func (fakeTransfer) Export(context.Context) (transferdto.ExportOutput, error) {
	return transferdto.ExportOutput{Content: "csv-payload", Exported: 2}, nil
}

func newService(store fakeStore, host *fakeHost) *service.PluginService {
	return service.NewPluginService(store, host, fakeInsights{}, fakeTransfer{})
}

func TestReportRejectsDisabledPlugin(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, false, []domain.Capability{domain.CapabilityReport})
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})
	_, err := svc.Report(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "weekly", TagName: "deep", DataDir: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrPluginDisabled) {
		t.Fatalf("expected ErrPluginDisabled, got %v", err)
	}
}

func TestReportRejectsMissingCapability(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})
	_, err := svc.Report(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "weekly", TagName: "deep", DataDir: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestReportRejectsUnknownCommand(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityReport})
	host := &fakeHost{commands: []domain.CommandDescriptor{{ID: "other", Kind: domain.CommandKindReport}}}
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, host)
	_, err := svc.Report(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "weekly", TagName: "deep", DataDir: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestReportInjectsAnalyticsPayload(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityReport})
	host := &fakeHost{commands: []domain.CommandDescriptor{{ID: "weekly", Kind: domain.CommandKindReport}}}
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, host)

	out, err := svc.Report(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "weekly", TagName: "deep", DataDir: "/tmp", Cwd: "/tmp"})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if out.ExitCode != 0 {
		t.Fatalf("exit code = %d", out.ExitCode)
	}
	if host.lastReq == nil || !strings.Contains(host.lastReq.Payload, `"deep"`) {
		t.Errorf("report payload missing tag data: %+v", host.lastReq)
	}
}

func TestReportRequiresTag(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityReport})
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})
	if _, err := svc.Report(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "weekly", DataDir: "/tmp", Cwd: "/tmp"}); err == nil {
		t.Fatal("report without tag accepted")
	}
}

func TestExportInjectsCSVPayload(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	host := &fakeHost{commands: []domain.CommandDescriptor{{ID: "backup", Kind: domain.CommandKindExport}}}
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, host)

	if _, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "backup", DataDir: "/tmp", Cwd: "/tmp"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if host.lastReq == nil || host.lastReq.Payload != "csv-payload" {
		t.Errorf("export payload = %+v", host.lastReq)
	}
}

func TestChecksumMismatchBlocksExecution(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	manifest.SHA256 = strings.Repeat("0", 64)
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})
	_, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "backup", DataDir: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityReport})
	manifest.Binary = filepath.Join(t.TempDir(), "gone")
	svc := newService(fakeStore{manifests: []domain.Manifest{manifest}}, &fakeHost{})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if len(results) != 1 || results[0].BinaryReachable || results[0].Error == "" {
		t.Errorf("results = %+v", results)
	}
}

func manifestWithBinary(t *testing.T, enabled bool, capabilities []domain.Capability) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "plugin-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "demo",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      enabled,
		Capabilities: capabilities,
	}
}
