package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLister struct {
	stations []Station
	err      error
}

func (f *fakeLister) Stations(ctx context.Context) ([]Station, error) {
	return f.stations, f.err
}

func TestRegistrySync(t *testing.T) {
	lister := &fakeLister{stations: []Station{
		{ID: "KORD", Active: true},
		{ID: "KMDW", Active: false},
		{ID: "KDFW", Active: true},
	}}
	r := NewRegistry(RegistryConfig{ReconcileInterval: time.Hour}, lister, nil)

	if err := r.sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if got := len(r.ActiveStations()); got != 2 {
		t.Errorf("active = %d, want 2", got)
	}
	if r.LastSyncAt().IsZero() {
		t.Error("LastSyncAt not set")
	}
}

func TestRegistryOnlyFilter(t *testing.T) {
	lister := &fakeLister{stations: []Station{
		{ID: "KORD", Active: true},
		{ID: "KDFW", Active: true},
	}}
	r := NewRegistry(RegistryConfig{Only: []string{"KORD"}}, lister, nil)

	if err := r.sync(context.Background()); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	active := r.ActiveStations()
	if len(active) != 1 || active[0].ID != "KORD" {
		t.Errorf("active = %v, want [KORD]", active)
	}
}

func TestRegistryStartFailsOnInitialSync(t *testing.T) {
	lister := &fakeLister{err: errors.New("provider down")}
	r := NewRegistry(RegistryConfig{}, lister, nil)

	if err := r.Start(context.Background()); err == nil {
		t.Error("Start should fail when the initial sync fails")
		_ = r.Stop(context.Background())
	}
}

func TestRegistryLifecycle(t *testing.T) {
	lister := &fakeLister{stations: []Station{{ID: "KORD", Active: true}}}
	r := NewRegistry(RegistryConfig{ReconcileInterval: 10 * time.Millisecond}, lister, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Swap the catalog and let a reconcile tick pick it up.
	lister.stations = []Station{{ID: "KORD", Active: true}, {ID: "KDFW", Active: true}}
	deadline := time.After(time.Second)
	for r.Len() != 2 {
		select {
		case <-deadline:
			t.Fatal("reconcile never picked up new station")
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
