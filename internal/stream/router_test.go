package stream

import (
	"context"
	"testing"
	"time"
)

func TestRouterRoutesObservations(t *testing.T) {
	input := make(chan RawMessage, 10)
	r := NewRouter(input, 10, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	receivedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	input <- RawMessage{
		Data:       []byte(`{"type":"observation","station":"KORD","observed_ts":1705320000000000,"temp_c":-3.5,"dew_point_c":-8.1,"wind_kph":22.4,"precip_mm":0.4}`),
		ReceivedAt: receivedAt,
	}

	obs, ok := r.Buffer().Receive()
	if !ok {
		t.Fatal("buffer closed unexpectedly")
	}
	if obs.Station != "KORD" {
		t.Errorf("Station = %q, want KORD", obs.Station)
	}
	if obs.ObservedAt.UnixMicro() != 1705320000000000 {
		t.Errorf("ObservedAt = %v", obs.ObservedAt)
	}
	if !obs.ReceivedAt.Equal(receivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", obs.ReceivedAt, receivedAt)
	}
	if obs.TempC != -3.5 || obs.PrecipMM != 0.4 {
		t.Errorf("TempC/PrecipMM = %v/%v, want -3.5/0.4", obs.TempC, obs.PrecipMM)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestRouterCountsParseErrorsAndSkips(t *testing.T) {
	input := make(chan RawMessage, 10)
	r := NewRouter(input, 10, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	input <- RawMessage{Data: []byte(`{not json`)}
	input <- RawMessage{Data: []byte(`{"type":"subscribed","stations":["KORD"]}`)}
	input <- RawMessage{Data: []byte(`{"type":"observation","station":"KORD","observed_ts":1}`)}

	deadline := time.After(time.Second)
	for {
		stats := r.Stats()
		if stats.Received == 3 {
			if stats.ParseErrors != 1 {
				t.Errorf("ParseErrors = %d, want 1", stats.ParseErrors)
			}
			if stats.Skipped != 1 {
				t.Errorf("Skipped = %d, want 1", stats.Skipped)
			}
			if stats.Routed != 1 {
				t.Errorf("Routed = %d, want 1", stats.Routed)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("router processed %d messages, want 3", stats.Received)
		case <-time.After(5 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestRouterDrainsBufferedInputOnStop(t *testing.T) {
	input := make(chan RawMessage, 10)
	for i := 0; i < 5; i++ {
		input <- RawMessage{
			Data:       []byte(`{"type":"observation","station":"KMDW","observed_ts":1}`),
			ReceivedAt: time.Now().UTC(),
		}
	}
	close(input)

	r := NewRouter(input, 10, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := r.Stats().Routed; got != 5 {
		t.Errorf("Routed = %d, want 5 (buffered messages dropped at shutdown)", got)
	}
	if got := r.Buffer().Len(); got != 5 {
		t.Errorf("buffer Len = %d, want 5", got)
	}
}
