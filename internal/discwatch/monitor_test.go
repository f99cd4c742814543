package discwatch

import (
	"context"
	"errors"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"ripfeed/internal/config"
	"ripfeed/internal/logging"
)

func newTestMonitor(handler Handler) *Monitor {
	cfg := &config.Config{}
	cfg.Source.OpticalDrive = "/dev/sr0"
	return New(cfg, logging.NewNop(), handler)
}

func TestNew(t *testing.T) {
	if New(nil, nil, nil) != nil {
		t.Fatal("expected nil monitor for nil config")
	}
	if New(&config.Config{}, nil, nil) != nil {
		t.Fatal("expected nil monitor without optical drive")
	}
	m := newTestMonitor(nil)
	if m == nil || m.Device() != "/dev/sr0" {
		t.Fatalf("unexpected monitor: %#v", m)
	}
	if m.Running() {
		t.Fatal("unstarted monitor reports running")
	}
}

func TestNilMonitorIsSafe(t *testing.T) {
	var m *Monitor
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start on nil monitor: %v", err)
	}
	m.Stop()
	if m.Running() {
		t.Fatal("nil monitor reports running")
	}
	if m.Device() != "" {
		t.Fatal("nil monitor has a device")
	}
}

func TestIsMediaEvent(t *testing.T) {
	tests := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{
			name:  "disk media change",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "block", "DISK_MEDIA_CHANGE": "1"}},
			want:  true,
		},
		{
			name:  "cdrom media present",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "block", "ID_CDROM_MEDIA": "1"}},
			want:  true,
		},
		{
			name:  "add action",
			event: netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block", "ID_CDROM_MEDIA": "1"}},
			want:  false,
		},
		{
			name:  "no media flag",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "block"}},
			want:  false,
		},
		{
			name:  "other subsystem",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "usb", "DISK_MEDIA_CHANGE": "1"}},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMediaEvent(tt.event); got != tt.want {
				t.Fatalf("isMediaEvent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"DEVNAME": "/dev/sr0"}, "/dev/sr0"},
		{map[string]string{"DEVNAME": "sr1"}, "/dev/sr1"},
		{map[string]string{"DEVPATH": "/devices/pci0000:00/ata2/block/sr0"}, "/dev/sr0"},
		{map[string]string{}, ""},
	}
	for _, tt := range tests {
		if got := deviceName(netlink.UEvent{Env: tt.env}); got != tt.want {
			t.Fatalf("deviceName(%v) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestHandleEvent(t *testing.T) {
	var calls []string
	m := newTestMonitor(func(_ context.Context, device string) error {
		calls = append(calls, device)
		return errors.New("boom")
	})

	media := map[string]string{"SUBSYSTEM": "block", "DISK_MEDIA_CHANGE": "1"}
	withDev := func(dev string) map[string]string {
		env := map[string]string{"DEVNAME": dev}
		for k, v := range media {
			env[k] = v
		}
		return env
	}

	ctx := context.Background()
	m.handleEvent(ctx, netlink.UEvent{Action: netlink.CHANGE, Env: withDev("/dev/sr0")})
	m.handleEvent(ctx, netlink.UEvent{Action: netlink.CHANGE, Env: withDev("/dev/sr1")})
	m.handleEvent(ctx, netlink.UEvent{Action: netlink.ADD, Env: withDev("/dev/sr0")})

	if len(calls) != 1 || calls[0] != "/dev/sr0" {
		t.Fatalf("unexpected handler calls: %v", calls)
	}
}
