package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	cleanup := &stubJob{name: NotificationCleanupJobName}
	digest := &stubJob{name: "digest"}
	registry, err := NewRegistry(cleanup, digest)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != cleanup || jobs[1] != digest {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
	if names := registry.Names(); names[0] != NotificationCleanupJobName || names[1] != "digest" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistryRejectsInvalidJobs(t *testing.T) {
	if _, err := NewRegistry(&stubJob{name: "a"}, &stubJob{name: "a"}); err == nil {
		t.Fatal("expected duplicate name error")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Fatal("expected nil job error")
	}
	if _, err := NewRegistry(&stubJob{name: "  "}); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestRegistryLookup(t *testing.T) {
	job := &stubJob{name: NotificationCleanupJobName}
	var registry Registry
	if err := registry.Register(job); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := registry.Lookup(" " + NotificationCleanupJobName)
	if !ok || got != job {
		t.Fatalf("lookup failed: %v %v", got, ok)
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatal("unexpected lookup hit")
	}
}
