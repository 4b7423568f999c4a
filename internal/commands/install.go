package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gerunddev/markbridge/internal/styles"
)

const (
	launchdLabel = "com.markbridge.watch"
	systemdUnit  = "markbridge-watch.service"
)

// servicePath returns where the user service file for goos lives
func servicePath(goos, home string) (string, error) {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist"), nil
	case "linux":
		return filepath.Join(home, ".config", "systemd", "user", systemdUnit), nil
	}
	return "", fmt.Errorf("unsupported operating system: %s", goos)
}

// serviceFile renders the service definition running exe's watch command
func serviceFile(goos, exe string) string {
	if goos == "darwin" {
		return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>watch</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>/tmp/markbridge.out.log</string>
	<key>StandardErrorPath</key>
	<string>/tmp/markbridge.err.log</string>
</dict>
</plist>
`, launchdLabel, exe)
	}
	return fmt.Sprintf(`[Unit]
Description=MarkBridge - batch document conversion
After=default.target

[Service]
Type=simple
ExecStart=%s watch
Restart=always
RestartSec=10

[Install]
WantedBy=default.target
`, exe)
}

// Install writes a user service that keeps the watch running
func Install() {
	fmt.Println(styles.TitleStyle.Render("MarkBridge Install"))
	fmt.Println()

	home, err := os.UserHomeDir()
	if err != nil {
		fail("Failed to get home directory: " + err.Error())
	}
	exe, err := os.Executable()
	if err != nil {
		fail("Failed to get executable path: " + err.Error())
	}
	path, err := servicePath(runtime.GOOS, home)
	if err != nil {
		fail(err.Error())
	}

	// the watch needs a usable config once the service manager starts it
	loadConfig()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fail("Failed to create service directory: " + err.Error())
	}
	if err := os.WriteFile(path, []byte(serviceFile(runtime.GOOS, exe)), 0644); err != nil {
		fail("Failed to write service file: " + err.Error())
	}

	fmt.Println(styles.SuccessStyle.Render("✓ Service file created: " + path))
	fmt.Println()
	fmt.Println("To enable the service:")
	if runtime.GOOS == "darwin" {
		fmt.Println(styles.DimStyle.Render("  launchctl load " + path))
	} else {
		fmt.Println(styles.DimStyle.Render("  systemctl --user daemon-reload"))
		fmt.Println(styles.DimStyle.Render("  systemctl --user enable --now " + systemdUnit))
	}
	fmt.Println()
	fmt.Println(styles.DimStyle.Render("Run 'markbridge uninstall' to remove it"))
}

// Uninstall stops the user service and removes its file
func Uninstall() {
	fmt.Println(styles.TitleStyle.Render("MarkBridge Uninstall"))
	fmt.Println()

	home, err := os.UserHomeDir()
	if err != nil {
		fail("Failed to get home directory: " + err.Error())
	}
	path, err := servicePath(runtime.GOOS, home)
	if err != nil {
		fail(err.Error())
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println(styles.WarningStyle.Render("⚠ Service file not found: " + path))
		fmt.Println("Nothing to uninstall.")
		return
	}

	// failures here mean the service was not loaded
	var steps [][]string
	if runtime.GOOS == "darwin" {
		steps = [][]string{{"launchctl", "unload", path}}
	} else {
		steps = [][]string{
			{"systemctl", "--user", "stop", systemdUnit},
			{"systemctl", "--user", "disable", systemdUnit},
		}
	}
	for _, step := range steps {
		if err := exec.Command(step[0], step[1:]...).Run(); err != nil {
			fmt.Println(styles.WarningStyle.Render(fmt.Sprintf("⚠ %s: %v", strings.Join(step, " "), err)))
		}
	}

	if err := os.Remove(path); err != nil {
		fail("Failed to remove service file: " + err.Error())
	}
	if runtime.GOOS == "linux" {
		if err := exec.Command("systemctl", "--user", "daemon-reload").Run(); err != nil {
			fmt.Println(styles.WarningStyle.Render("⚠ Failed to reload systemd: " + err.Error()))
		}
	}

	fmt.Println(styles.SuccessStyle.Render("✓ Service file removed: " + path))
}
