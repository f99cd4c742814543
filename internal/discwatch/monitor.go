package discwatch

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"ripfeed/internal/config"
	"ripfeed/internal/logging"
)

// Handler is called with the device path of a drive whose media changed.
type Handler func(ctx context.Context, device string) error

// Monitor listens for udev media-change events on one device.
type Monitor struct {
	logger  *slog.Logger
	handler Handler
	device  string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// New returns a monitor for the configured optical drive, or nil when no
// drive is configured.
func New(cfg *config.Config, logger *slog.Logger, handler Handler) *Monitor {
	if cfg == nil {
		return nil
	}
	device := strings.TrimSpace(cfg.Source.OpticalDrive)
	if device == "" {
		return nil
	}
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "discwatch"),
		handler: handler,
		device:  device,
	}
}

// Device returns the watched device path.
func (m *Monitor) Device() string {
	if m == nil {
		return ""
	}
	return m.device
}

// Start connects to the udev netlink socket and begins dispatching events.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run on Linux with access to the udev netlink group"),
			logging.String(logging.FieldImpact, "media insertions are not detected"),
		)
		return err
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx, conn, m.quit, m.done)

	m.logger.Info("disc watch started",
		logging.String(logging.FieldEventType, "discwatch_started"),
		logging.String("device", m.device),
	)
	return nil
}

// Stop shuts the monitor down and waits for the event loop to exit.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.quit)
	done := m.done
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false
	m.mu.Unlock()

	<-done
	m.logger.Info("disc watch stopped", logging.String(logging.FieldEventType, "discwatch_stopped"))
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	events := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(events, errs, matcher())
	defer close(monitorQuit)

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case uevent := <-events:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "media insertions may be missed"),
			)
		}
	}
}

// matcher narrows the kernel feed to block-device change events carrying
// either media flag. isMediaEvent repeats the check on delivered events.
func matcher() netlink.Matcher {
	action := string(netlink.CHANGE)
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":         "block",
			"DISK_MEDIA_CHANGE": "1",
		},
	})
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":      "block",
			"ID_CDROM_MEDIA": "1",
		},
	})
	return rules
}

func isMediaEvent(uevent netlink.UEvent) bool {
	if uevent.Action != netlink.CHANGE {
		return false
	}
	if sub, ok := uevent.Env["SUBSYSTEM"]; ok && sub != "block" {
		return false
	}
	return uevent.Env["DISK_MEDIA_CHANGE"] == "1" || uevent.Env["ID_CDROM_MEDIA"] == "1"
}

func (m *Monitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	if !isMediaEvent(uevent) {
		return
	}
	device := deviceName(uevent)
	if device == "" || device != m.device {
		m.logger.Debug("ignoring media event for other device",
			logging.String("device", device),
			logging.String("watched_device", m.device),
		)
		return
	}

	m.logger.Info("disc media change detected",
		logging.String(logging.FieldEventType, "disc_media_change"),
		logging.String("device", device),
	)
	if m.handler == nil {
		return
	}
	if err := m.handler(ctx, device); err != nil {
		logging.WarnWithContext(m.logger, "media change handler failed", "discwatch_handler_failed",
			logging.Error(err),
			logging.String("device", device),
			logging.String(logging.FieldImpact, "inserted disc was not processed"),
		)
	}
}

// deviceName returns DEVNAME, falling back to /dev/<last DEVPATH element>.
func deviceName(uevent netlink.UEvent) string {
	if name := uevent.Env["DEVNAME"]; name != "" {
		if !strings.HasPrefix(name, "/") {
			return "/dev/" + name
		}
		return name
	}
	devpath := strings.TrimSuffix(uevent.Env["DEVPATH"], "/")
	if devpath == "" {
		return ""
	}
	return "/dev/" + path.Base(devpath)
}
