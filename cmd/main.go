// One-Click Rotation
// Replays a configured key sequence, one key per press of a trigger key.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"oneclick/internal/autostart"
	"oneclick/internal/config"
	"oneclick/internal/console"
	"oneclick/internal/hotkey"
	"oneclick/internal/input"
	"oneclick/internal/osutils"
	"oneclick/internal/rotation"
	"oneclick/internal/session"
	"oneclick/internal/tray"
	"oneclick/internal/ui"
)

var (
	version   = "0.1.0"
	showUI    = flag.Bool("ui", false, "Serve the configuration UI in the foreground")
	listRots  = flag.Bool("list", false, "List stored rotations")
	runName   = flag.String("run", "", "Start the named rotation and run until interrupted")
	showVer   = flag.Bool("version", false, "Show version")
	configDir = flag.String("config-dir", "", "Directory holding rotations.json and settings.json")
	testInput = flag.Bool("test-input", false, "Print key events seen by the global hook")
)

// app bundles the long-lived components shared by every mode
type app struct {
	store   *config.Store
	hotkeys *hotkey.Manager
	session *session.Session
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("oneclick version %s\n", version)
		return
	}

	store, err := config.NewStore(*configDir)
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	loadErr := store.Load()
	if loadErr != nil {
		log.Printf("Warning: failed to load rotations: %v", loadErr)
	}
	if err := store.LoadSettings(); err != nil {
		log.Printf("Warning: failed to load settings: %v", err)
	}

	if *listRots {
		listRotations(store)
		return
	}

	if *testInput {
		runInputTest()
		return
	}

	a := newApp(store)
	defer a.close()
	a.session.ReportLoad(loadErr)

	if *runName != "" {
		runHeadless(a, *runName)
		return
	}

	if *showUI {
		runUI(a)
		return
	}

	// Default: run as tray service
	runService(a)
}

func newApp(store *config.Store) *app {
	if runtime.GOOS == "windows" && !osutils.IsAdmin() {
		log.Println("Note: the global key hook cannot see keys sent to elevated windows")
		log.Println("Run as Administrator to trigger rotations in those applications")
	}

	hkMgr := hotkey.NewManager(input.NewHook())
	runner := rotation.NewRunner(hkMgr, input.NewInjector())
	sess := session.New(store, runner, console.New())

	return &app{
		store:   store,
		hotkeys: hkMgr,
		session: sess,
	}
}

func (a *app) close() {
	a.session.Shutdown()
	if err := a.hotkeys.Close(); err != nil {
		log.Printf("Hotkey: close error: %v", err)
	}
}

func listRotations(store *config.Store) {
	rotations := store.List()
	if len(rotations) == 0 {
		fmt.Printf("No rotations stored in %s\n", store.Path())
		return
	}

	fmt.Println("Rotations:")
	fmt.Println("----------")
	for i, r := range rotations {
		fmt.Printf("[%d] %s\n", i, r.Name)
		fmt.Printf("  Trigger:  %s\n", r.Trigger)
		fmt.Printf("  Sequence: %s\n", strings.Join(r.Sequence, ", "))
		if err := config.Validate(r); err != nil {
			fmt.Printf("  Unusable: %v\n", err)
		}
		fmt.Println()
	}
}

func runHeadless(a *app, name string) {
	if err := a.session.SelectByName(name); err != nil {
		log.Printf("Failed to select rotation %s: %v", name, err)
		return
	}
	if err := a.session.Start(); err != nil {
		log.Printf("Failed to start rotation %s: %v", name, err)
		return
	}

	st := a.session.Status()
	fmt.Printf("Rotation %s active, press %s to emit the next key. Ctrl+C to stop.\n", st.Active, st.Trigger)

	waitForSignal()
	log.Println("Shutting down...")
}

func runUI(a *app) {
	server := newUIServer(a)
	url, err := server.Listen(a.store.Settings().UIPort)
	if err != nil {
		log.Printf("UI server error: %v", err)
		return
	}

	go func() {
		waitForSignal()
		log.Println("Shutting down...")
		server.Stop()
	}()

	fmt.Printf("Configuration UI available at %s\n", url)
	server.OpenBrowser()
	if err := server.Serve(); err != nil {
		log.Printf("UI server error: %v", err)
	}
}

func runService(a *app) {
	log.Println("One-Click Rotation service starting...")

	server := newUIServer(a)
	if _, err := server.Listen(a.store.Settings().UIPort); err != nil {
		log.Printf("UI server error: %v", err)
		return
	}
	go func() {
		if err := server.Serve(); err != nil {
			log.Printf("UI server error: %v", err)
		}
	}()
	defer server.Stop()

	if a.store.Settings().OpenUIOnStart {
		server.OpenBrowser()
	}

	t := tray.New("One-Click Rotation", "One-Click Rotation: idle")

	toggleID := t.AddMenuItem("Start Rotation", func() {
		if err := a.session.Toggle(); err != nil {
			log.Printf("Tray: toggle failed: %v", err)
		}
	})

	t.AddSeparator()

	// Tray menu items are built once, so rotations created later are only
	// selectable from the UI. Items are bound by name since indexes shift.
	selectItems := make(map[int]string, a.store.Len())
	for _, r := range a.session.Rotations() {
		id := t.AddMenuItem(fmt.Sprintf("Select %s", r.Name), selectByName(a.session, r.Name))
		selectItems[id] = r.Name
	}
	if len(selectItems) > 0 {
		t.AddSeparator()
	}

	t.AddMenuItem("Configurations...", func() {
		server.OpenBrowser()
	})

	t.AddSeparator()

	t.AddMenuItem("Quit", func() {
		t.Stop()
	})

	refreshTray := func() {
		st := a.session.Status()
		if st.Running {
			t.SetItemTitle(toggleID, "Stop Rotation")
			t.SetTooltip(fmt.Sprintf("One-Click Rotation: %s on %s", st.Active, st.Trigger))
		} else {
			t.SetItemTitle(toggleID, "Start Rotation")
			t.SetTooltip("One-Click Rotation: idle")
		}
		for id, checked := range checkedItems(selectItems, st) {
			t.SetItemChecked(id, checked)
		}
	}
	a.session.OnChange(refreshTray)

	// Handle signals
	go func() {
		waitForSignal()
		log.Println("Shutting down...")
		t.Stop()
	}()

	log.Println("One-Click Rotation running. Press Ctrl+C to stop.")
	t.Run()
}

// selectByName returns a tray callback selecting the rotation called name
func selectByName(sess *session.Session, name string) func() {
	return func() {
		if err := sess.SelectByName(name); err != nil {
			log.Printf("Tray: select %s failed: %v", name, err)
		}
	}
}

// checkedItems reports which tray selection items carry a checkmark
func checkedItems(items map[int]string, st session.Status) map[int]bool {
	checked := make(map[int]bool, len(items))
	for id, name := range items {
		checked[id] = st.SelectedName != "" && strings.EqualFold(name, st.SelectedName)
	}
	return checked
}

func newUIServer(a *app) *ui.Server {
	server := ui.NewServer(a.session, a.store)
	server.SetOnSettings(applySettings)
	applySettings(a.store.Settings())
	return server
}

// applySettings brings the login item in line with the saved settings
func applySettings(settings config.Settings) {
	if settings.StartOnBoot == autostart.IsEnabled() {
		return
	}

	var err error
	if settings.StartOnBoot {
		err = autostart.Enable()
	} else {
		err = autostart.Disable()
	}
	if errors.Is(err, autostart.ErrUnsupported) {
		log.Printf("Autostart: %v", err)
		return
	}
	if err != nil {
		log.Printf("Autostart: failed to apply start_on_boot=%v: %v", settings.StartOnBoot, err)
	}
}

func runInputTest() {
	log.Println("Starting key capture test...")
	if runtime.GOOS == "windows" && !osutils.IsAdmin() {
		log.Println("Warning: not running as Administrator; keys sent to elevated windows are not captured")
	}

	h := input.NewHook()
	events, err := h.Start()
	if err != nil {
		log.Fatalf("Failed to install key hook: %v", err)
	}

	go func() {
		waitForSignal()
		h.Stop()
	}()

	log.Println("Press keys to see them. Press Ctrl+C to exit.")
	for ev := range events {
		state := "up"
		if ev.Pressed {
			state = "down"
		}
		fmt.Printf("%s key=%q %s\n", time.UnixMilli(ev.Timestamp).Format("15:04:05.000"), ev.Key, state)
	}
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	<-sigCh
}
