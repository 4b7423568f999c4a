package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gerunddev/markbridge/internal/config"
	"github.com/gerunddev/markbridge/internal/styles"
)

// Config manages the configuration file: init writes the defaults, show
// prints the effective configuration
func Config(raw []string) {
	a, err := parseArgs(raw, nil, []string{"--force"})
	if err != nil {
		fail(err.Error())
	}

	switch a.arg(0, "show") {
	case "init":
		configInit(a.switches["--force"])
	case "show":
		configShow()
	case "path":
		fmt.Println(config.ConfigPath())
	default:
		fail("Usage: markbridge config [init [--force] | show | path]")
	}
}

func configInit(force bool) {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		fail("Config already exists at " + path + " (use --force to overwrite)")
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fail("Failed to check config: " + err.Error())
	}

	if err := config.DefaultConfig().Save(); err != nil {
		fail("Failed to write config: " + err.Error())
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Config written to " + path))
}

func configShow() {
	cfg := loadConfig()
	data, err := cfg.Marshal()
	if err != nil {
		fail(err.Error())
	}

	fmt.Println(styles.DimStyle.Render("# " + config.ConfigPath()))
	fmt.Print(string(data))
}
