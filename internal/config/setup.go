package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RunSetup prompts on out for each setting, reading answers from in.
// Values in existing are offered as defaults (edit mode).
func RunSetup(existing *Config, in io.Reader, out io.Writer) (*Config, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askInt := func(prompt string, defaultVal int) (int, error) {
		for {
			ans, err := ask(prompt, strconv.Itoa(defaultVal))
			if err != nil {
				return 0, err
			}
			n, err := strconv.Atoi(ans)
			if err == nil && n > 0 {
				return n, nil
			}
			fmt.Fprintln(out, "  please enter a positive number")
		}
	}

	cfg := Defaults()
	if existing != nil {
		cfg = Merge(existing, nil)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │   splitwatch setup              │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	cfg.OutputDir, err = ask("  Report output directory", cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	format, err := ask("  Report format (text/json/yaml)", cfg.DefaultFormat)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "yaml":
		cfg.DefaultFormat = format
	default:
		cfg.DefaultFormat = "text"
	}

	cfg.LinesPerPage, err = askInt("  Lines per document page", cfg.LinesPerPage)
	if err != nil {
		return nil, err
	}

	cfg.RefreshMs, err = askInt("  Display refresh interval (ms)", cfg.RefreshMs)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel, err = ask("  Log level (debug/info/warn/error)", cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	return &cfg, nil
}
